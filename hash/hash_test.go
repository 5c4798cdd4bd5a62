package hash

import (
	"testing"
)

// performance benchmark
func BenchmarkHash(b *testing.B) {
	n := uint32(0)
	s := uint32(0)
	for i := 0; i < b.N; i++ {
		n = Hash(n, s, 1<<20)
		s++
	}
}

// sanity check fuzz
func FuzzHash(f *testing.F) {
	f.Add(uint32(0), uint32(0), uint32(0))
	f.Fuzz(func(t *testing.T, n, s, max uint32) {
		out := Hash(n, s, max)
		if max == 0 && out != 0 {
			t.Errorf("Hash(%d, %d, 0) == %d (max=0 should be 0)", n, s, out)
		}
		if max > 1 && out >= max {
			t.Errorf("Hash(%d, %d, %d) == %d (output bigger or equal than max)", n, s, max, out)
		}
	})
}

func TestSeedDistinct(t *testing.T) {
	for _, base := range []int64{0, 1, 42, -7, 1 << 40} {
		var seen = make(map[int64]int)
		for n := 0; n < 100; n++ {
			s := Seed(base, n)
			if s < 0 {
				t.Errorf("Seed(%d, %d) == %d is negative", base, n, s)
			}
			if prev, ok := seen[s]; ok {
				t.Errorf("Seed(%d, %d) == Seed(%d, %d)", base, n, base, prev)
			}
			seen[s] = n
		}
		if Seed(base, 3) != Seed(base, 3) {
			t.Errorf("Seed not deterministic")
		}
	}
}
