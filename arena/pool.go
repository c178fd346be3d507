package arena

import "sync"

const (
	// Pool limits to prevent memory bloat
	poolMaxWords  = 512 // max uint64 words per pooled slab (4 KiB)
	poolInitWords = 32
)

// word slab pool backing arena allocations
var slabPool = sync.Pool{
	New: func() any {
		buf := make([]uint64, 0, poolInitWords)
		return &buf
	},
}

// getSlab returns a zeroed slab of exactly words elements.
func getSlab(words int) *[]uint64 {
	s := slabPool.Get().(*[]uint64)
	if cap(*s) < words {
		// too small for this request; give it back and allocate fresh
		slabPool.Put(s)
		buf := make([]uint64, words)
		return &buf
	}
	*s = (*s)[:words]
	clear(*s)
	return s
}

func putSlab(s *[]uint64) {
	if s == nil || cap(*s) > poolMaxWords {
		return // reject oversized
	}
	*s = (*s)[:0]
	slabPool.Put(s)
}
