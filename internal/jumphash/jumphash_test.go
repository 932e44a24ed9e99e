package jumphash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zeebo/xxh3"
)

func TestHashRange(t *testing.T) {
	for buckets := 1; buckets <= 16; buckets++ {
		for key := range uint64(500) {
			b := Hash(key, buckets)
			assert.GreaterOrEqual(t, b, 0)
			assert.Less(t, b, buckets)
		}
	}
}

func TestHashNoBuckets(t *testing.T) {
	assert.Equal(t, 0, Hash(42, 0))
	assert.Equal(t, 0, Hash(42, -1))
}

func TestHashMinimalMovement(t *testing.T) {
	// Growing from n to n+1 buckets only moves keys into the new bucket
	for key := range uint64(1000) {
		h := xxh3.HashString(string(rune(key)))
		before := Hash(h, 5)
		after := Hash(h, 6)
		if before != after {
			assert.Equal(t, 5, after)
		}
	}
}
