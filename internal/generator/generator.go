package generator

import (
	"context"
	"math/rand"
	"time"

	"github.com/vanshika/graphpath/internal/domain"
)

// Dataset contains the generated nodes and segments.
type Dataset struct {
	Nodes    []domain.Node    `json:"nodes"`
	Segments []domain.Segment `json:"segments"`
}

// BackboneEnd returns the last node of the backbone chain, which is reachable
// from node 1.
func BackboneEnd(cfg Config) domain.NodeID {
	return domain.NodeID(cfg.BackboneLength + 1)
}

// Generator produces synthetic segment graphs.
type Generator struct {
	cfg  Config
	rand *rand.Rand
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.BackboneLength <= 0 {
		cfg.BackboneLength = def.BackboneLength
	}
	if cfg.Chords < 0 {
		cfg.Chords = 0
	}
	if cfg.ChordSpan < 2 {
		cfg.ChordSpan = def.ChordSpan
	}
	if cfg.Branches < 0 {
		cfg.Branches = 0
	}
	if cfg.BranchDepth <= 0 {
		cfg.BranchDepth = def.BranchDepth
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Config returns the effective configuration after defaults were applied.
func (g *Generator) Config() Config {
	return g.cfg
}

// Generate synthesises the graph. Backbone nodes are numbered from 1, branch
// nodes follow. Segment ids are unique and assigned in creation order. It
// respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	backboneNodes := g.cfg.BackboneLength + 1
	nodes := make([]domain.Node, 0, backboneNodes+g.cfg.Branches*g.cfg.BranchDepth)
	segments := make([]domain.Segment, 0, g.cfg.BackboneLength+g.cfg.Chords+g.cfg.Branches*g.cfg.BranchDepth)

	var nextSegment int64 = 1
	addSegment := func(from, to domain.NodeID) {
		segments = append(segments, domain.Segment{ID: nextSegment, From: from, To: to})
		nextSegment++
	}

	for i := 1; i <= backboneNodes; i++ {
		nodes = append(nodes, domain.Node{ID: domain.NodeID(i)})
	}
	for i := 1; i < backboneNodes; i++ {
		addSegment(domain.NodeID(i), domain.NodeID(i+1))
	}

	for i := 0; i < g.cfg.Chords; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		span := 2 + g.rand.Intn(g.cfg.ChordSpan-1)
		if span > g.cfg.BackboneLength {
			continue
		}
		from := 1 + g.rand.Intn(backboneNodes-span)
		addSegment(domain.NodeID(from), domain.NodeID(from+span))
	}

	next := domain.NodeID(backboneNodes + 1)
	for i := 0; i < g.cfg.Branches; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		at := domain.NodeID(1 + g.rand.Intn(backboneNodes))
		depth := 1 + g.rand.Intn(g.cfg.BranchDepth)
		for d := 0; d < depth; d++ {
			nodes = append(nodes, domain.Node{ID: next})
			addSegment(at, next)
			at = next
			next++
		}
	}

	return Dataset{Nodes: nodes, Segments: segments}, nil
}
