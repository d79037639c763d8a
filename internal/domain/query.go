package domain

// Query records one statement issued against the graph store, kept for
// provenance logging.
type Query struct {
	Name   string
	Text   string
	Params map[string]any
}

// Names of the three read-only query shapes issued during path resolution.
const (
	QueryHopCount = "shortest_hop_count"
	QueryBoundary = "boundary_at_distance"
	QueryEdges    = "shortest_path_edges"
)
