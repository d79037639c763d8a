package repository

import (
	"fmt"
	"regexp"
)

// Dialect holds the query templates for one graph engine. The quantifier bound
// of a path pattern must be a literal in both Cypher and Spanner GQL, so
// templates take it as an integer; node ids and hop counts are always bound as
// parameters named start, end and hopCount.
type Dialect struct {
	Name string

	hopCount func(bound int) string
	boundary func(bound int) string
	edges    func(bound int) string

	// Write statements; empty when the engine is managed out of band.
	schema        []string
	upsertNodes   string
	upsertSegment string
}

// SupportsWrites reports whether the dialect can ingest seed data.
func (d Dialect) SupportsWrites() bool {
	return d.upsertNodes != "" && d.upsertSegment != ""
}

// Cypher targets Neo4j 5.21+ with (:Node {nodeId}) vertices joined by
// SEGMENT and REVERSE_SEGMENT relationships carrying a segmentId.
func Cypher() Dialect {
	return Dialect{
		Name: "cypher",
		hopCount: func(bound int) string {
			return fmt.Sprintf(cypherHopCount, bound)
		},
		boundary: func(bound int) string {
			return fmt.Sprintf(cypherBoundary, bound)
		},
		edges: func(bound int) string {
			return fmt.Sprintf(cypherEdges, bound)
		},
		schema:        []string{cypherNodeIndex, cypherSegmentIndex},
		upsertNodes:   cypherUpsertNodes,
		upsertSegment: cypherUpsertSegments,
	}
}

var graphNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SpannerGraph targets a Cloud Spanner property graph with NODO vertices and
// SEGMENTO / REVERSE_SEGMENTO edges. Spanner tables are loaded out of band, so
// the dialect is read-only.
func SpannerGraph(graphName string) (Dialect, error) {
	if !graphNamePattern.MatchString(graphName) {
		return Dialect{}, fmt.Errorf("invalid graph name %q", graphName)
	}
	return Dialect{
		Name: "spanner",
		hopCount: func(bound int) string {
			return fmt.Sprintf(gqlHopCount, graphName, bound)
		},
		boundary: func(bound int) string {
			return fmt.Sprintf(gqlBoundary, graphName, bound)
		},
		edges: func(bound int) string {
			return fmt.Sprintf(gqlEdges, graphName, bound)
		},
	}, nil
}

const cypherHopCount = `
MATCH p = ANY SHORTEST (src:Node {nodeId: $start})-[:SEGMENT|REVERSE_SEGMENT]->{1,%d}(dst:Node {nodeId: $end})
RETURN length(p) AS pathLength
`

const cypherBoundary = `
MATCH p = ANY SHORTEST (src:Node {nodeId: $start})-[:SEGMENT|REVERSE_SEGMENT]->{1,%d}(dst:Node)
WITH dst, length(p) AS pathLength
WHERE pathLength = $hopCount AND dst.nodeId <> $start
RETURN dst.nodeId AS nodeId
LIMIT 1
`

const cypherEdges = `
MATCH p = ANY SHORTEST (src:Node {nodeId: $start})-[:SEGMENT|REVERSE_SEGMENT]->{1,%d}(dst:Node {nodeId: $end})
WITH relationships(p) AS rels
UNWIND range(0, size(rels) - 1) AS hop
WITH hop, rels[hop] AS r
RETURN hop, startNode(r).nodeId AS startNodeId, r.segmentId AS segmentId, endNode(r).nodeId AS endNodeId
ORDER BY hop
`

const cypherNodeIndex = `CREATE INDEX node_id IF NOT EXISTS FOR (n:Node) ON (n.nodeId)`

const cypherSegmentIndex = `CREATE INDEX segment_id IF NOT EXISTS FOR ()-[s:SEGMENT]-() ON (s.segmentId)`

const cypherUpsertNodes = `
UNWIND $nodes AS nodeId
MERGE (:Node {nodeId: nodeId})
RETURN count(*) AS written
`

const cypherUpsertSegments = `
UNWIND $segments AS seg
MATCH (a:Node {nodeId: seg.startNodeId}), (b:Node {nodeId: seg.endNodeId})
MERGE (a)-[:SEGMENT {segmentId: seg.segmentId}]->(b)
MERGE (b)-[:REVERSE_SEGMENT {segmentId: seg.segmentId}]->(a)
RETURN count(*) AS written
`

const gqlHopCount = `
GRAPH %s
MATCH ANY SHORTEST (src:NODO {NODEID: @start})-[s:SEGMENTO | REVERSE_SEGMENTO]->{1, %d}(dest:NODO {NODEID: @end})
LET pathLength = COUNT(s)
RETURN pathLength
`

const gqlBoundary = `
GRAPH %s
MATCH ANY SHORTEST (src:NODO {NODEID: @start})-[s:SEGMENTO | REVERSE_SEGMENTO]->{1, %d}(dest:NODO)
LET pathLength = COUNT(s)
FILTER pathLength = @hopCount AND dest.NODEID <> @start
RETURN dest.NODEID AS nodeId
LIMIT 1
`

const gqlEdges = `
GRAPH %s
MATCH p = ANY SHORTEST (src:NODO {NODEID: @start})-[s:SEGMENTO | REVERSE_SEGMENTO]->{1, %d}(dest:NODO {NODEID: @end})
LET es = EDGES(p)
FOR element IN es WITH OFFSET AS hop
RETURN hop, element.STARTNODEID AS startNodeId, element.SEGMENTID AS segmentId, element.ENDNODEID AS endNodeId
ORDER BY hop
`
