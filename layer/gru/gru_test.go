package gru

import "math"
import "math/rand"
import "testing"

import "github.com/neurlang/recognizer/tensor"

func TestStateStaysBounded(t *testing.T) {
	g := MustNew(2, 3).Lay(rand.New(rand.NewSource(5)))
	h := tensor.Zeros(2, 3)
	x := tensor.FromRows([][]float64{{10, -10}, {0.5, 0.5}})
	for i := 0; i < 20; i++ {
		h = g.Forward(x, h)
	}
	for _, v := range h.Data() {
		if math.Abs(v) > 1 || math.IsNaN(v) {
			t.Errorf("state %g escaped (-1, 1)", v)
		}
	}
}

func TestGradientReachesEveryParam(t *testing.T) {
	g := MustNew(2, 3).Lay(rand.New(rand.NewSource(5)))
	h := tensor.FromRows([][]float64{{0.1, -0.2, 0.3}})
	x := tensor.FromRows([][]float64{{1, -1}})
	tensor.Backward(tensor.Sum(g.Forward(x, g.Forward(x, h))))
	for i, p := range g.Params() {
		var norm float64
		for _, v := range p.Grad() {
			norm += v * v
		}
		if norm == 0 {
			t.Errorf("param %d got no gradient", i)
		}
	}
}
