package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/graphpath/internal/domain"
)

func TestPlanChunks(t *testing.T) {
	cases := []struct {
		name   string
		length int
		maxHop int
		want   []int
	}{
		{"single short", 7, 20, []int{7}},
		{"exactly cap", 20, 20, []int{20}},
		{"remainder", 47, 20, []int{20, 20, 7}},
		{"even split", 40, 20, []int{20, 20}},
		{"one over", 21, 20, []int{20, 1}},
		{"unit hops", 3, 1, []int{1, 1, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := PlanChunks(tc.length, tc.maxHop, 1)
			require.NoError(t, err)
			assert.Equal(t, tc.want, plan.Sizes())
			assert.Equal(t, tc.length, plan.TotalHops())
			for i, c := range plan {
				assert.Equal(t, i, c.Index)
				assert.LessOrEqual(t, c.HopCount, tc.maxHop)
				assert.Positive(t, c.HopCount)
			}
		})
	}
}

func TestPlanChunksOnlyFirstStartKnown(t *testing.T) {
	plan, err := PlanChunks(47, 20, 1)
	require.NoError(t, err)

	assert.True(t, plan[0].Known)
	assert.Equal(t, domain.NodeID(1), plan[0].Start)
	for _, c := range plan[1:] {
		assert.False(t, c.Known)
	}
}

func TestPlanChunksRejectsNonPositive(t *testing.T) {
	_, err := PlanChunks(0, 20, 1)
	assert.Equal(t, KindInvalidInput, KindOf(err))

	_, err = PlanChunks(5, 0, 1)
	assert.Equal(t, KindInvalidInput, KindOf(err))
}
