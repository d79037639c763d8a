package service

import "github.com/vanshika/graphpath/internal/domain"

// PlanChunks splits a path of totalLength hops into chunks of at most maxHop
// hops, full chunks first and the remainder last. Only the first chunk's start
// is known; the rest are discovered while walking the plan.
func PlanChunks(totalLength, maxHop int, start domain.NodeID) (domain.ChunkPlan, error) {
	if totalLength <= 0 {
		return nil, invalidInput("path length must be positive, got %d", totalLength)
	}
	if maxHop <= 0 {
		return nil, invalidInput("max hop must be positive, got %d", maxHop)
	}

	n := (totalLength + maxHop - 1) / maxHop
	plan := make(domain.ChunkPlan, n)
	for i := range plan {
		plan[i] = domain.Chunk{Index: i, HopCount: maxHop}
	}
	plan[n-1].HopCount = totalLength - maxHop*(n-1)
	plan[0].Start = start
	plan[0].Known = true
	return plan, nil
}
