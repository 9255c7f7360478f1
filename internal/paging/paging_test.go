package paging

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Request{Page: 0, Size: 10}, Normalize(-3, 0, 10))
	assert.Equal(t, Request{Page: 2, Size: MaxSize}, Normalize(2, 5000, 10))
	assert.Equal(t, 40, Normalize(2, 20, 10).Offset())
}

func TestNormalizeKeepsHugePagesPastTheEnd(t *testing.T) {
	r := Normalize(1<<62, 4, 10)
	assert.Positive(t, r.Offset())
	assert.LessOrEqual(t, r.Offset(), maxOffset)
	assert.Equal(t, r.Page*r.Size, r.Offset())

	r = Normalize(math.MaxInt, MaxSize, 10)
	assert.Positive(t, r.Offset())
}

func TestNewComputesTotalPages(t *testing.T) {
	p := New([]int{1, 2}, 0, 2, 5)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, int64(5), p.TotalElements)

	empty := New[int](nil, 0, 10, 0)
	assert.NotNil(t, empty.Content)
	assert.Zero(t, empty.TotalPages)
}
