package tensor

import "fmt"
import "math"

import "gonum.org/v1/gonum/floats"
import "gonum.org/v1/gonum/mat"

func dense(rows, cols int, data []float64) *mat.Dense {
	return mat.NewDense(rows, cols, data)
}

// MatMul computes a @ b.
func MatMul(a, b *Tensor) *Tensor {
	if a.cols != b.rows {
		panic(fmt.Sprintf("tensor: MatMul %dx%d @ %dx%d", a.rows, a.cols, b.rows, b.cols))
	}
	o := derive(a.rows, b.cols, a, b)
	dense(o.rows, o.cols, o.data).Mul(dense(a.rows, a.cols, a.data), dense(b.rows, b.cols, b.data))
	o.back = func() {
		g := dense(o.rows, o.cols, o.grad)
		var ga, gb mat.Dense
		ga.Mul(g, dense(b.rows, b.cols, b.data).T())
		gb.Mul(dense(a.rows, a.cols, a.data).T(), g)
		floats.Add(a.gradient(), ga.RawMatrix().Data)
		floats.Add(b.gradient(), gb.RawMatrix().Data)
	}
	return o
}

// Add computes a + b elementwise.
func Add(a, b *Tensor) *Tensor {
	sameShape("Add", a, b)
	o := derive(a.rows, a.cols, a, b)
	floats.AddTo(o.data, a.data, b.data)
	o.back = func() {
		floats.Add(a.gradient(), o.grad)
		floats.Add(b.gradient(), o.grad)
	}
	return o
}

// AddRow adds the 1 x cols row bias to every row of a.
func AddRow(a, bias *Tensor) *Tensor {
	if bias.rows != 1 || bias.cols != a.cols {
		panic(fmt.Sprintf("tensor: AddRow %dx%d + %dx%d", a.rows, a.cols, bias.rows, bias.cols))
	}
	o := derive(a.rows, a.cols, a, bias)
	for i := 0; i < a.rows; i++ {
		floats.AddTo(o.Row(i), a.Row(i), bias.data)
	}
	o.back = func() {
		floats.Add(a.gradient(), o.grad)
		gb := bias.gradient()
		for i := 0; i < o.rows; i++ {
			floats.Add(gb, o.grad[i*o.cols:(i+1)*o.cols])
		}
	}
	return o
}

// Mul computes a * b elementwise.
func Mul(a, b *Tensor) *Tensor {
	sameShape("Mul", a, b)
	o := derive(a.rows, a.cols, a, b)
	floats.MulTo(o.data, a.data, b.data)
	o.back = func() {
		ga, gb := a.gradient(), b.gradient()
		for i, g := range o.grad {
			ga[i] += g * b.data[i]
			gb[i] += g * a.data[i]
		}
	}
	return o
}

// MulCol scales every row i of a by c[i, 0].
func MulCol(a, c *Tensor) *Tensor {
	if c.cols != 1 || c.rows != a.rows {
		panic(fmt.Sprintf("tensor: MulCol %dx%d * %dx%d", a.rows, a.cols, c.rows, c.cols))
	}
	o := derive(a.rows, a.cols, a, c)
	for i := 0; i < a.rows; i++ {
		floats.ScaleTo(o.Row(i), c.data[i], a.Row(i))
	}
	o.back = func() {
		ga, gc := a.gradient(), c.gradient()
		for i := 0; i < o.rows; i++ {
			g := o.grad[i*o.cols : (i+1)*o.cols]
			floats.AddScaled(ga[i*a.cols:(i+1)*a.cols], c.data[i], g)
			gc[i] += floats.Dot(g, a.Row(i))
		}
	}
	return o
}

// Scale computes s * a.
func Scale(a *Tensor, s float64) *Tensor {
	o := derive(a.rows, a.cols, a)
	floats.ScaleTo(o.data, s, a.data)
	o.back = func() {
		floats.AddScaled(a.gradient(), s, o.grad)
	}
	return o
}

// OneMinus computes 1 - a.
func OneMinus(a *Tensor) *Tensor {
	o := derive(a.rows, a.cols, a)
	for i, v := range a.data {
		o.data[i] = 1 - v
	}
	o.back = func() {
		floats.Sub(a.gradient(), o.grad)
	}
	return o
}

// Tanh applies tanh elementwise.
func Tanh(a *Tensor) *Tensor {
	o := derive(a.rows, a.cols, a)
	for i, v := range a.data {
		o.data[i] = math.Tanh(v)
	}
	o.back = func() {
		ga := a.gradient()
		for i, y := range o.data {
			ga[i] += o.grad[i] * (1 - y*y)
		}
	}
	return o
}

// Sigmoid applies the logistic function elementwise.
func Sigmoid(a *Tensor) *Tensor {
	o := derive(a.rows, a.cols, a)
	for i, v := range a.data {
		o.data[i] = 1 / (1 + math.Exp(-v))
	}
	o.back = func() {
		ga := a.gradient()
		for i, y := range o.data {
			ga[i] += o.grad[i] * y * (1 - y)
		}
	}
	return o
}

// SoftmaxRows normalises every row into a probability distribution.
func SoftmaxRows(a *Tensor) *Tensor {
	o := derive(a.rows, a.cols, a)
	for i := 0; i < a.rows; i++ {
		softmax(o.Row(i), a.Row(i))
	}
	o.back = func() {
		ga := a.gradient()
		for i := 0; i < o.rows; i++ {
			y := o.Row(i)
			g := o.grad[i*o.cols : (i+1)*o.cols]
			dot := floats.Dot(y, g)
			for j := range y {
				ga[i*a.cols+j] += y[j] * (g[j] - dot)
			}
		}
	}
	return o
}

func softmax(dst, src []float64) {
	lse := floats.LogSumExp(src)
	for j, v := range src {
		dst[j] = math.Exp(v - lse)
	}
}

// ConcatCols joins tensors with equal row counts side by side.
func ConcatCols(ts ...*Tensor) *Tensor {
	if len(ts) == 0 {
		panic("tensor: ConcatCols of nothing")
	}
	var cols int
	for _, t := range ts {
		if t.rows != ts[0].rows {
			panic(fmt.Sprintf("tensor: ConcatCols rows %d vs %d", t.rows, ts[0].rows))
		}
		cols += t.cols
	}
	o := derive(ts[0].rows, cols, ts...)
	for i := 0; i < o.rows; i++ {
		var off int
		for _, t := range ts {
			copy(o.data[i*cols+off:], t.Row(i))
			off += t.cols
		}
	}
	o.back = func() {
		for i := 0; i < o.rows; i++ {
			var off int
			for _, t := range ts {
				floats.Add(t.gradient()[i*t.cols:(i+1)*t.cols], o.grad[i*cols+off:i*cols+off+t.cols])
				off += t.cols
			}
		}
	}
	return o
}

// Col extracts column j as a rows x 1 tensor.
func Col(a *Tensor, j int) *Tensor {
	if j < 0 || j >= a.cols {
		panic(fmt.Sprintf("tensor: Col %d of %dx%d", j, a.rows, a.cols))
	}
	o := derive(a.rows, 1, a)
	for i := 0; i < a.rows; i++ {
		o.data[i] = a.data[i*a.cols+j]
	}
	o.back = func() {
		ga := a.gradient()
		for i := 0; i < o.rows; i++ {
			ga[i*a.cols+j] += o.grad[i]
		}
	}
	return o
}

// Gather selects rows of table by index, as an embedding lookup does.
func Gather(table *Tensor, ids []int) *Tensor {
	if len(ids) == 0 {
		panic("tensor: Gather of no ids")
	}
	for _, id := range ids {
		if id < 0 || id >= table.rows {
			panic(fmt.Sprintf("tensor: Gather id %d outside %d rows", id, table.rows))
		}
	}
	o := derive(len(ids), table.cols, table)
	for i, id := range ids {
		copy(o.Row(i), table.Row(id))
	}
	o.back = func() {
		gt := table.gradient()
		for i, id := range ids {
			floats.Add(gt[id*table.cols:(id+1)*table.cols], o.grad[i*o.cols:(i+1)*o.cols])
		}
	}
	return o
}

// Sum reduces a to a 1x1 tensor.
func Sum(a *Tensor) *Tensor {
	o := derive(1, 1, a)
	o.data[0] = floats.Sum(a.data)
	o.back = func() {
		ga := a.gradient()
		for i := range ga {
			ga[i] += o.grad[0]
		}
	}
	return o
}

// CrossEntropy is the mean sparse softmax cross-entropy of logits against targets,
// skipping rows whose target equals ignore. It is zero when every row is skipped.
func CrossEntropy(logits *Tensor, targets []int, ignore int) *Tensor {
	if len(targets) != logits.rows {
		panic(fmt.Sprintf("tensor: CrossEntropy %d targets for %d rows", len(targets), logits.rows))
	}
	o := derive(1, 1, logits)
	probs := make([]float64, len(logits.data))
	var counted int
	for i, t := range targets {
		row := logits.Row(i)
		softmax(probs[i*logits.cols:(i+1)*logits.cols], row)
		if t == ignore {
			continue
		}
		if t < 0 || t >= logits.cols {
			panic(fmt.Sprintf("tensor: CrossEntropy target %d outside %d classes", t, logits.cols))
		}
		counted++
		o.data[0] += floats.LogSumExp(row) - row[t]
	}
	if counted == 0 {
		return o
	}
	o.data[0] /= float64(counted)
	o.back = func() {
		gl := logits.gradient()
		scale := o.grad[0] / float64(counted)
		for i, t := range targets {
			if t == ignore {
				continue
			}
			for j := 0; j < logits.cols; j++ {
				p := probs[i*logits.cols+j]
				if j == t {
					p -= 1
				}
				gl[i*logits.cols+j] += scale * p
			}
		}
	}
	return o
}
