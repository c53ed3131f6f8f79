package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ehrlich-b/dockyard/internal/uapi"
)

func TestGetReturnsZeroLengthWithSufficientCapacity(t *testing.T) {
	bp := NewBatchPool()
	batch := bp.Get(5)
	assert.Len(t, batch, 0)
	assert.GreaterOrEqual(t, cap(batch), 5)
}

func TestPutThenGetReturnsEmptySliceWithCapacity(t *testing.T) {
	bp := NewBatchPool()
	batch := bp.Get(3)
	batch = append(batch, uapi.Package{ID: 1})
	bp.Put(batch)

	reused := bp.Get(3)
	assert.Len(t, reused, 0)
	assert.GreaterOrEqual(t, cap(reused), 3)
}

func TestGetBeyondLargestBucketAllocatesDirectly(t *testing.T) {
	bp := NewBatchPool()
	batch := bp.Get(1000)
	assert.GreaterOrEqual(t, cap(batch), 1000)
}
