// Package tensor implements row-major 2-D tensors with a reverse-mode gradient tape.
//
// Every operation records its inputs and a closure accumulating their
// gradients. Backward walks the recorded graph from a scalar loss. Parameters
// are ordinary tensors without inputs; optimizers read their gradients and
// write their data in place.
package tensor

import "fmt"
import "math"
import "math/rand"

// Tensor is a rows x cols matrix which remembers how it was computed.
type Tensor struct {
	rows, cols int
	data       []float64
	grad       []float64
	prev       []*Tensor
	back       func()
}

// New wraps data (row-major, rows*cols long) into a tensor. A nil data allocates zeros.
func New(rows, cols int, data []float64) *Tensor {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("tensor: bad shape %dx%d", rows, cols))
	}
	if data == nil {
		data = make([]float64, rows*cols)
	}
	if len(data) != rows*cols {
		panic(fmt.Sprintf("tensor: %d values for shape %dx%d", len(data), rows, cols))
	}
	return &Tensor{rows: rows, cols: cols, data: data}
}

// Zeros creates a zero tensor.
func Zeros(rows, cols int) *Tensor {
	return New(rows, cols, nil)
}

// Scalar creates a 1x1 tensor.
func Scalar(v float64) *Tensor {
	return New(1, 1, []float64{v})
}

// FromRows copies equally long rows into a tensor.
func FromRows(rows [][]float64) *Tensor {
	if len(rows) == 0 {
		panic("tensor: no rows")
	}
	t := Zeros(len(rows), len(rows[0]))
	for i, r := range rows {
		if len(r) != t.cols {
			panic(fmt.Sprintf("tensor: row %d has %d values, want %d", i, len(r), t.cols))
		}
		copy(t.data[i*t.cols:], r)
	}
	return t
}

// Param creates a trainable tensor initialised with Glorot uniform noise.
func Param(rows, cols int, rng *rand.Rand) *Tensor {
	t := Zeros(rows, cols)
	limit := math.Sqrt(6 / float64(rows+cols))
	for i := range t.data {
		t.data[i] = (rng.Float64()*2 - 1) * limit
	}
	return t
}

// Rows returns the number of rows.
func (t *Tensor) Rows() int { return t.rows }

// Cols returns the number of columns.
func (t *Tensor) Cols() int { return t.cols }

// Data returns the backing values. Writes are visible to the tensor.
func (t *Tensor) Data() []float64 { return t.data }

// Grad returns the gradient buffer, allocating it on first use.
func (t *Tensor) Grad() []float64 { return t.gradient() }

// At returns the value at row i, column j.
func (t *Tensor) At(i, j int) float64 { return t.data[i*t.cols+j] }

// Set stores v at row i, column j.
func (t *Tensor) Set(i, j int, v float64) { t.data[i*t.cols+j] = v }

// Row returns row i as a view.
func (t *Tensor) Row(i int) []float64 { return t.data[i*t.cols : (i+1)*t.cols] }

// Value returns the single value of a 1x1 tensor.
func (t *Tensor) Value() float64 {
	if t.rows != 1 || t.cols != 1 {
		panic(fmt.Sprintf("tensor: Value of %dx%d", t.rows, t.cols))
	}
	return t.data[0]
}

// ZeroGrad clears the gradient.
func (t *Tensor) ZeroGrad() {
	for i := range t.grad {
		t.grad[i] = 0
	}
}

// Clone copies the values into a new tensor without history.
func (t *Tensor) Clone() *Tensor {
	o := Zeros(t.rows, t.cols)
	copy(o.data, t.data)
	return o
}

func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(%dx%d)", t.rows, t.cols)
}

func (t *Tensor) gradient() []float64 {
	if t.grad == nil {
		t.grad = make([]float64, len(t.data))
	}
	return t.grad
}

func derive(rows, cols int, prev ...*Tensor) *Tensor {
	o := Zeros(rows, cols)
	o.prev = prev
	return o
}

func sameShape(op string, a, b *Tensor) {
	if a.rows != b.rows || a.cols != b.cols {
		panic(fmt.Sprintf("tensor: %s shape mismatch %dx%d vs %dx%d", op, a.rows, a.cols, b.rows, b.cols))
	}
}

// Backward propagates d(loss)/d(loss) = 1 through the recorded graph.
func Backward(loss *Tensor) {
	var order []*Tensor
	var seen = make(map[*Tensor]struct{})
	var visit func(n *Tensor)
	visit = func(n *Tensor) {
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		for _, p := range n.prev {
			visit(p)
		}
		order = append(order, n)
	}
	visit(loss)
	g := loss.gradient()
	for i := range g {
		g[i] = 1
	}
	for i := len(order) - 1; i >= 0; i-- {
		if order[i].back != nil && order[i].grad != nil {
			order[i].back()
		}
	}
}
