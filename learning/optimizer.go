package learning

import "math"

import "gonum.org/v1/gonum/floats"

import "github.com/neurlang/recognizer/tensor"

// Optimizer applies accumulated gradients to parameters.
type Optimizer interface {

	// Step updates every parameter once from its gradient.
	Step(params []*tensor.Tensor)
}

// Clipper is an optimizer which wants the global gradient norm limited before each step.
type Clipper interface {
	MaxNorm() float64
}

// ZeroGrad clears the gradients of params.
func ZeroGrad(params []*tensor.Tensor) {
	for _, p := range params {
		p.ZeroGrad()
	}
}

// ClipNorm rescales all gradients together so their global L2 norm is at most
// max. It returns the norm before clipping.
func ClipNorm(params []*tensor.Tensor, max float64) float64 {
	var sum float64
	for _, p := range params {
		g := p.Grad()
		sum += floats.Dot(g, g)
	}
	norm := math.Sqrt(sum)
	if max > 0 && norm > max {
		for _, p := range params {
			floats.Scale(max/norm, p.Grad())
		}
	}
	return norm
}

// SGD is plain gradient descent: param -= lr * (grad + decay * param).
type SGD struct {
	h HyperParameters
}

func (o *SGD) MaxNorm() float64 { return o.h.ClipNorm }

func (o *SGD) Step(params []*tensor.Tensor) {
	for _, p := range params {
		d, g := p.Data(), p.Grad()
		for i := range d {
			d[i] -= o.h.LearningRate * (g[i] + o.h.WeightDecay*d[i])
		}
	}
}

// Adam keeps bias-corrected moving averages of the gradient and its square per parameter.
type Adam struct {
	h    HyperParameters
	m, v map[*tensor.Tensor][]float64
	t    int
}

func (o *Adam) MaxNorm() float64 { return o.h.ClipNorm }

func (o *Adam) Step(params []*tensor.Tensor) {
	if o.m == nil {
		o.m = make(map[*tensor.Tensor][]float64)
		o.v = make(map[*tensor.Tensor][]float64)
	}
	o.t++
	bias1 := 1 - math.Pow(o.h.Beta1, float64(o.t))
	bias2 := 1 - math.Pow(o.h.Beta2, float64(o.t))
	for _, p := range params {
		d, g := p.Data(), p.Grad()
		m, ok := o.m[p]
		if !ok {
			m = make([]float64, len(d))
			o.m[p] = m
			o.v[p] = make([]float64, len(d))
		}
		v := o.v[p]
		for i := range d {
			grad := g[i] + o.h.WeightDecay*d[i]
			m[i] = o.h.Beta1*m[i] + (1-o.h.Beta1)*grad
			v[i] = o.h.Beta2*v[i] + (1-o.h.Beta2)*grad*grad
			d[i] -= o.h.LearningRate * (m[i] / bias1) / (math.Sqrt(v[i]/bias2) + o.h.Epsilon)
		}
	}
}
