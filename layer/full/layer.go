// Package full implements a fully connected layer
package full

import "math/rand"

import "github.com/pkg/errors"

import "github.com/neurlang/recognizer/tensor"
import "github.com/neurlang/recognizer/vocab"

// Activation is applied to the affine output.
type Activation byte

const (
	Linear Activation = iota
	Tanh
	Sigmoid
)

// FullLayer is the architecture of a dense layer.
type FullLayer struct {
	in, out    int
	activation Activation
}

// Full is a dense layer with weights.
type Full struct {
	w, b       *tensor.Tensor
	activation Activation
}

// MustNew creates a new full layer with in inputs and out outputs
func MustNew(in, out int, activation Activation) *FullLayer {
	o, err := New(in, out, activation)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new full layer with in inputs and out outputs
func New(in, out int, activation Activation) (o *FullLayer, err error) {
	if in <= 0 || out <= 0 {
		return nil, errors.Wrapf(vocab.ErrConfiguration, "full layer %dx%d", in, out)
	}
	if activation > Sigmoid {
		return nil, errors.Wrapf(vocab.ErrConfiguration, "activation %d", activation)
	}
	o = new(FullLayer)
	o.in = in
	o.out = out
	o.activation = activation
	return
}

// In is the input width.
func (i *FullLayer) In() int { return i.in }

// Out is the output width.
func (i *FullLayer) Out() int { return i.out }

// Lay turns the full layer spec into a layer with fresh weights and zero bias
func (i *FullLayer) Lay(rng *rand.Rand) *Full {
	return &Full{
		w:          tensor.Param(i.in, i.out, rng),
		b:          tensor.Zeros(1, i.out),
		activation: i.activation,
	}
}

// Forward maps [N, in] to [N, out].
func (f *Full) Forward(x *tensor.Tensor) *tensor.Tensor {
	y := tensor.AddRow(tensor.MatMul(x, f.w), f.b)
	switch f.activation {
	case Tanh:
		return tensor.Tanh(y)
	case Sigmoid:
		return tensor.Sigmoid(y)
	}
	return y
}

// Params lists the weights and the bias.
func (f *Full) Params() []*tensor.Tensor {
	return []*tensor.Tensor{f.w, f.b}
}
