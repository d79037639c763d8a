// Package memstore answers the bounded shortest-path query shapes from an
// in-memory graph using breadth-first search. It stands in for the graph
// database in tests and in offline runs of pathctl.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/vanshika/graphpath/internal/domain"
)

// Store is a directed graph built from segments: every segment contributes a
// forward and a reverse edge with the same segment id. Traversal visits a
// node's forward edges before its reverse edges, each in segment order. The
// graph is immutable after New; only call counters and injected faults change.
type Store struct {
	adjacency map[domain.NodeID][]domain.Edge

	mu             sync.Mutex
	calls          map[string]int
	failures       map[string]error
	hideBoundaries bool
}

// New builds a store over the given nodes and segments. Segment endpoints that
// are missing from nodes are added implicitly.
func New(nodes []domain.Node, segments []domain.Segment) *Store {
	adj := make(map[domain.NodeID][]domain.Edge, len(nodes))
	for _, n := range nodes {
		if _, ok := adj[n.ID]; !ok {
			adj[n.ID] = nil
		}
	}
	for _, s := range segments {
		adj[s.From] = append(adj[s.From], s.Forward())
	}
	for _, s := range segments {
		adj[s.To] = append(adj[s.To], s.Reverse())
	}
	return &Store{
		adjacency: adj,
		calls:     make(map[string]int),
		failures:  make(map[string]error),
	}
}

// Chain builds a simple path 1 -> 2 -> ... -> n+1 of n segments whose ids equal
// their start node id.
func Chain(n int) *Store {
	segments := make([]domain.Segment, n)
	for i := 0; i < n; i++ {
		segments[i] = domain.Segment{ID: int64(i + 1), From: domain.NodeID(i + 1), To: domain.NodeID(i + 2)}
	}
	return New(nil, segments)
}

// FailNext makes the next call of the named query shape return err.
func (s *Store) FailNext(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[name] = err
}

// HideBoundaries makes every boundary lookup report no node.
func (s *Store) HideBoundaries() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hideBoundaries = true
}

// Calls returns how many times the named query shape was executed.
func (s *Store) Calls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

// ShortestHopCount returns the BFS distance from start to end when it is at
// most maxHop, otherwise 0.
func (s *Store) ShortestHopCount(ctx context.Context, start, end domain.NodeID, maxHop int) (int, domain.Query, error) {
	q := s.query(domain.QueryHopCount, maxHop, start, end, 0)
	if err := s.enter(ctx, q.Name); err != nil {
		return 0, q, err
	}
	dist, _, _ := s.bfs(start, maxHop)
	d, ok := dist[end]
	if !ok || end == start {
		return 0, q, nil
	}
	return d, q, nil
}

// BoundaryAtDistance returns the first node discovered at BFS distance exactly
// hopCount from start. Like the database query it ignores towards.
func (s *Store) BoundaryAtDistance(ctx context.Context, start domain.NodeID, hopCount int, towards domain.NodeID) (domain.NodeID, bool, domain.Query, error) {
	q := s.query(domain.QueryBoundary, hopCount, start, towards, hopCount)
	if err := s.enter(ctx, q.Name); err != nil {
		return 0, false, q, err
	}
	s.mu.Lock()
	hidden := s.hideBoundaries
	s.mu.Unlock()
	if hidden {
		return 0, false, q, nil
	}

	dist, _, order := s.bfs(start, hopCount)
	for _, id := range order {
		if dist[id] == hopCount && id != start {
			return id, true, q, nil
		}
	}
	return 0, false, q, nil
}

// ShortestPathEdges returns the edges of a BFS shortest path from start to end
// of at most maxHop hops, or an empty slice when none exists.
func (s *Store) ShortestPathEdges(ctx context.Context, start, end domain.NodeID, maxHop int) ([]domain.Edge, domain.Query, error) {
	q := s.query(domain.QueryEdges, maxHop, start, end, 0)
	if err := s.enter(ctx, q.Name); err != nil {
		return nil, q, err
	}
	if start == end {
		return []domain.Edge{}, q, nil
	}
	_, parent, _ := s.bfs(start, maxHop)
	if _, ok := parent[end]; !ok {
		return []domain.Edge{}, q, nil
	}

	var reversed []domain.Edge
	for at := end; at != start; {
		e := parent[at]
		reversed = append(reversed, e)
		at = e.StartNodeID
	}
	edges := make([]domain.Edge, len(reversed))
	for i, e := range reversed {
		edges[len(reversed)-1-i] = e
	}
	return edges, q, nil
}

// bfs explores up to limit hops from start. It returns the distance to every
// reached node, the edge through which each node other than start was first
// reached, and the nodes in discovery order.
func (s *Store) bfs(start domain.NodeID, limit int) (map[domain.NodeID]int, map[domain.NodeID]domain.Edge, []domain.NodeID) {
	dist := map[domain.NodeID]int{start: 0}
	parent := make(map[domain.NodeID]domain.Edge)
	order := []domain.NodeID{start}
	frontier := []domain.NodeID{start}
	for depth := 1; depth <= limit && len(frontier) > 0; depth++ {
		var next []domain.NodeID
		for _, id := range frontier {
			for _, e := range s.adjacency[id] {
				if _, seen := dist[e.EndNodeID]; seen {
					continue
				}
				dist[e.EndNodeID] = depth
				parent[e.EndNodeID] = e
				order = append(order, e.EndNodeID)
				next = append(next, e.EndNodeID)
			}
		}
		frontier = next
	}
	return dist, parent, order
}

func (s *Store) enter(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[name]++
	if err, ok := s.failures[name]; ok {
		delete(s.failures, name)
		return err
	}
	return nil
}

func (s *Store) query(name string, bound int, start, end domain.NodeID, hopCount int) domain.Query {
	params := map[string]any{"start": int64(start), "end": int64(end)}
	if hopCount > 0 {
		params["hopCount"] = int64(hopCount)
	}
	return domain.Query{
		Name:   name,
		Text:   fmt.Sprintf("memstore %s bound=%d", name, bound),
		Params: params,
	}
}
