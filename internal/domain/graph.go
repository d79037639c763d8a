package domain

// Node is a vertex in seed data.
type Node struct {
	ID NodeID `json:"nodeId"`
}

// Segment is an undirected link between two nodes in seed data. Ingestion writes
// it as a forward SEGMENT edge and a REVERSE_SEGMENT edge sharing the same id.
type Segment struct {
	ID   int64  `json:"segmentId"`
	From NodeID `json:"startNodeId"`
	To   NodeID `json:"endNodeId"`
}

// Forward returns the edge traversing the segment in its stored direction.
func (s Segment) Forward() Edge {
	return Edge{StartNodeID: s.From, SegmentID: s.ID, EndNodeID: s.To}
}

// Reverse returns the edge traversing the segment backwards.
func (s Segment) Reverse() Edge {
	return Edge{StartNodeID: s.To, SegmentID: s.ID, EndNodeID: s.From}
}
