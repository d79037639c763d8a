package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanshika/graphpath/internal/domain"
)

// Stitcher assembles segment edge lists into one path, checking that every
// segment starts where the previous one ended. It also keeps every query
// issued along the way for provenance.
type Stitcher struct {
	plan    domain.ChunkPlan
	next    int
	edges   domain.Path
	queries []domain.Query
}

// NewStitcher prepares a stitcher for the given plan.
func NewStitcher(plan domain.ChunkPlan) *Stitcher {
	return &Stitcher{
		plan:  plan,
		edges: make(domain.Path, 0, plan.TotalHops()),
	}
}

// Record keeps a query for provenance. Zero-value queries are ignored.
func (s *Stitcher) Record(q domain.Query) {
	if q.Name == "" && q.Text == "" {
		return
	}
	s.queries = append(s.queries, q)
}

// Append adds the edges fetched for chunk, which must be the next chunk of the
// plan with its start resolved.
func (s *Stitcher) Append(chunk domain.Chunk, edges []domain.Edge) error {
	if s.next >= len(s.plan) {
		return inconsistent("segment %d appended past the end of a %d chunk plan", chunk.Index, len(s.plan))
	}
	if chunk.Index != s.next {
		return inconsistent("segment %d appended out of order, expected %d", chunk.Index, s.next)
	}
	if !chunk.Known {
		return inconsistent("segment %d appended without a resolved start", chunk.Index)
	}
	if chunk.HopCount <= 0 {
		return inconsistent("segment %d planned with %d hops", chunk.Index, chunk.HopCount)
	}
	if len(edges) != chunk.HopCount {
		return inconsistent("segment %d has %d edges, planned %d", chunk.Index, len(edges), chunk.HopCount)
	}
	if edges[0].StartNodeID != chunk.Start {
		return inconsistent("segment %d starts at node %d, expected %d", chunk.Index, edges[0].StartNodeID, chunk.Start)
	}
	if i, ok := domain.Path(edges).Contiguous(); !ok {
		return inconsistent("segment %d breaks between edge %d (end %d) and edge %d (start %d)",
			chunk.Index, i, edges[i].EndNodeID, i+1, edges[i+1].StartNodeID)
	}
	if prev, ok := s.edges.End(); ok && prev != edges[0].StartNodeID {
		return inconsistent("segment %d starts at node %d but segment %d ended at node %d",
			chunk.Index, edges[0].StartNodeID, chunk.Index-1, prev)
	}

	s.edges = append(s.edges, edges...)
	s.next++
	return nil
}

// Finish verifies that every planned segment arrived and the path ends at end.
func (s *Stitcher) Finish(end domain.NodeID) (domain.Path, error) {
	if s.next != len(s.plan) {
		return nil, inconsistent("only %d of %d segments were stitched", s.next, len(s.plan))
	}
	if last, ok := s.edges.End(); !ok || last != end {
		return nil, inconsistent("path ends at node %d, expected %d", last, end)
	}
	if len(s.edges) != s.plan.TotalHops() {
		return nil, inconsistent("path has %d edges, expected %d", len(s.edges), s.plan.TotalHops())
	}
	return s.edges, nil
}

// Queries returns the recorded queries in execution order.
func (s *Stitcher) Queries() []domain.Query {
	return append([]domain.Query(nil), s.queries...)
}

// QueryText concatenates the recorded queries, each preceded by a comment line
// naming the query and its bound parameters.
func (s *Stitcher) QueryText() string {
	return concatQueries(s.queries)
}

func concatQueries(queries []domain.Query) string {
	var b strings.Builder
	for _, q := range queries {
		fmt.Fprintf(&b, "-- %s %s\n", q.Name, formatParams(q.Params))
		b.WriteString(strings.TrimSpace(q.Text))
		b.WriteString("\n")
	}
	return b.String()
}

func formatParams(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, params[k])
	}
	return "{" + strings.Join(parts, " ") + "}"
}
