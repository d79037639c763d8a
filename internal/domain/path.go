package domain

// NodeID identifies a vertex in the backing graph store.
type NodeID int64

// Edge is one traversed relationship instance. SegmentID identifies the edge
// occurrence; two edges between the same nodes may carry different ids.
type Edge struct {
	StartNodeID NodeID `json:"startNodeId"`
	SegmentID   int64  `json:"segmentId"`
	EndNodeID   NodeID `json:"endNodeId"`
}

// Path is an ordered sequence of edges, oldest hop first.
type Path []Edge

// Contiguous reports whether every edge ends where the next one starts. When it
// does not, the returned index is the position of the first edge whose end node
// disagrees with its successor's start node.
func (p Path) Contiguous() (int, bool) {
	for i := 0; i+1 < len(p); i++ {
		if p[i].EndNodeID != p[i+1].StartNodeID {
			return i, false
		}
	}
	return -1, true
}

// Start returns the start node of the first edge.
func (p Path) Start() (NodeID, bool) {
	if len(p) == 0 {
		return 0, false
	}
	return p[0].StartNodeID, true
}

// End returns the end node of the last edge.
func (p Path) End() (NodeID, bool) {
	if len(p) == 0 {
		return 0, false
	}
	return p[len(p)-1].EndNodeID, true
}

// Chunk is one bounded sub-query of a segmented path. Only the first chunk of a
// plan has a known start node; later starts are discovered while walking.
type Chunk struct {
	Index    int
	Start    NodeID
	Known    bool
	HopCount int
}

// ChunkPlan is the ordered list of chunks covering a path.
type ChunkPlan []Chunk

// TotalHops sums the planned hop counts.
func (p ChunkPlan) TotalHops() int {
	total := 0
	for _, c := range p {
		total += c.HopCount
	}
	return total
}

// Sizes returns the hop count of every chunk in order.
func (p ChunkPlan) Sizes() []int {
	sizes := make([]int, len(p))
	for i, c := range p {
		sizes[i] = c.HopCount
	}
	return sizes
}
