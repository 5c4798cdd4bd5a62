package tensor

import "math"
import "math/rand"
import "testing"

// checkGradients compares Backward against central differences for every input.
func checkGradients(t *testing.T, name string, inputs []*Tensor, f func() *Tensor) {
	t.Helper()
	for _, in := range inputs {
		in.grad = nil
	}
	Backward(f())
	const eps = 1e-6
	for n, in := range inputs {
		analytic := append([]float64(nil), in.Grad()...)
		for i := range in.data {
			orig := in.data[i]
			in.data[i] = orig + eps
			plus := f().Value()
			in.data[i] = orig - eps
			minus := f().Value()
			in.data[i] = orig
			numeric := (plus - minus) / (2 * eps)
			if math.Abs(numeric-analytic[i]) > 1e-4*math.Max(1, math.Abs(numeric)) {
				t.Errorf("%s: input %d [%d]: analytic %g numeric %g", name, n, i, analytic[i], numeric)
			}
		}
	}
}

func TestGradients(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := Param(3, 4, rng)
	b := Param(4, 2, rng)
	c := Param(3, 4, rng)
	bias := Param(1, 4, rng)
	col := Param(3, 1, rng)
	table := Param(5, 4, rng)

	testCases := []struct {
		name   string
		inputs []*Tensor
		f      func() *Tensor
	}{
		{"matmul", []*Tensor{a, b}, func() *Tensor { return Sum(Tanh(MatMul(a, b))) }},
		{"add", []*Tensor{a, c}, func() *Tensor { return Sum(Mul(Add(a, c), a)) }},
		{"addrow", []*Tensor{a, bias}, func() *Tensor { return Sum(Sigmoid(AddRow(a, bias))) }},
		{"mulcol", []*Tensor{a, col}, func() *Tensor { return Sum(Tanh(MulCol(a, col))) }},
		{"scale", []*Tensor{a}, func() *Tensor { return Sum(Mul(Scale(a, 0.5), OneMinus(a))) }},
		{"softmax", []*Tensor{a, c}, func() *Tensor { return Sum(Mul(SoftmaxRows(a), c)) }},
		{"concat", []*Tensor{a, col}, func() *Tensor { return Sum(Tanh(ConcatCols(a, col, a))) }},
		{"col", []*Tensor{a}, func() *Tensor { return Sum(Tanh(Col(a, 2))) }},
		{"gather", []*Tensor{table}, func() *Tensor { return Sum(Tanh(Gather(table, []int{4, 0, 4}))) }},
		{"crossentropy", []*Tensor{a}, func() *Tensor { return CrossEntropy(a, []int{1, 3, 0}, -1) }},
		{"crossentropy_ignore", []*Tensor{a}, func() *Tensor { return CrossEntropy(a, []int{1, 0, 2}, 0) }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			checkGradients(t, tc.name, tc.inputs, tc.f)
		})
	}
}

func TestCrossEntropyAllIgnored(t *testing.T) {
	logits := FromRows([][]float64{{1, 2}, {3, 4}})
	loss := CrossEntropy(logits, []int{0, 0}, 0)
	if loss.Value() != 0 {
		t.Errorf("loss %g, want 0", loss.Value())
	}
	Backward(Add(loss, Scalar(1)))
	for _, g := range logits.Grad() {
		if g != 0 {
			t.Errorf("gradient %g through fully ignored loss", g)
		}
	}
}

func TestCrossEntropyUniform(t *testing.T) {
	logits := Zeros(2, 4)
	loss := CrossEntropy(logits, []int{1, 2}, -1)
	if math.Abs(loss.Value()-math.Log(4)) > 1e-12 {
		t.Errorf("loss %g, want log 4", loss.Value())
	}
}

func TestSoftmaxRowsNormalised(t *testing.T) {
	s := SoftmaxRows(FromRows([][]float64{{1, 2, 3}, {-1000, 0, 1000}}))
	for i := 0; i < s.Rows(); i++ {
		var sum float64
		for _, v := range s.Row(i) {
			sum += v
		}
		if math.Abs(sum-1) > 1e-12 {
			t.Errorf("row %d sums to %g", i, sum)
		}
	}
}

func TestNewPanicsOnMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("New accepted 3 values for 2x2")
		}
	}()
	New(2, 2, []float64{1, 2, 3})
}
