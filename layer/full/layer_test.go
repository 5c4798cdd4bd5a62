package full

import "math/rand"
import "testing"

import "github.com/neurlang/recognizer/tensor"

func TestForwardShape(t *testing.T) {
	f := MustNew(3, 2, Tanh).Lay(rand.New(rand.NewSource(1)))
	y := f.Forward(tensor.Zeros(4, 3))
	if y.Rows() != 4 || y.Cols() != 2 {
		t.Fatalf("output %v", y)
	}
	// zero input and zero bias give zero output
	for _, v := range y.Data() {
		if v != 0 {
			t.Errorf("got %g", v)
		}
	}
}

func TestLayIsFresh(t *testing.T) {
	spec := MustNew(5, 5, Linear)
	a := spec.Lay(rand.New(rand.NewSource(1)))
	b := spec.Lay(rand.New(rand.NewSource(2)))
	if a.w == b.w {
		t.Fatal("shared weights")
	}
	var same = true
	for i, v := range a.w.Data() {
		if b.w.Data()[i] != v {
			same = false
		}
	}
	if same {
		t.Errorf("different seeds gave identical weights")
	}
}

func TestNewRejects(t *testing.T) {
	if _, err := New(0, 1, Linear); err == nil {
		t.Errorf("zero inputs accepted")
	}
	if _, err := New(1, 1, Activation(9)); err == nil {
		t.Errorf("unknown activation accepted")
	}
}
