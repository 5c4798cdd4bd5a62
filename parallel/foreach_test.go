package parallel

import "errors"
import "sync/atomic"
import "testing"

func TestForEachVisitsAll(t *testing.T) {
	for _, limit := range []int{0, 1, 3, 100} {
		var hits = make([]int32, 50)
		ForEach(len(hits), limit, func(i int) {
			atomic.AddInt32(&hits[i], 1)
		})
		for i, h := range hits {
			if h != 1 {
				t.Errorf("limit %d: index %d visited %d times", limit, i, h)
			}
		}
	}
}

func TestForEachErrLowestIndex(t *testing.T) {
	err := ForEachErr(10, 4, func(i int) error {
		if i == 3 || i == 7 {
			return errors.New(string(rune('0' + i)))
		}
		return nil
	})
	if err == nil || err.Error() != "3" {
		t.Errorf("err == %v, want 3", err)
	}
}
