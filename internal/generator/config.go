package generator

// Config drives the synthetic graph generator.
type Config struct {
	// BackboneLength is the number of segments on the chain from node 1 to the
	// last backbone node. It guarantees a long shortest path exists.
	BackboneLength int
	// Chords adds segments between backbone nodes at most ChordSpan apart.
	// They shorten the backbone without disconnecting it.
	Chords    int
	ChordSpan int
	// Branches hangs dead-end paths of up to BranchDepth segments off random
	// backbone nodes.
	Branches    int
	BranchDepth int
	Seed        int64
}

// DefaultConfig returns settings that produce paths several chunks long at the
// default hop cap.
func DefaultConfig() Config {
	return Config{
		BackboneLength: 120,
		Chords:         10,
		ChordSpan:      4,
		Branches:       40,
		BranchDepth:    6,
		Seed:           42,
	}
}
