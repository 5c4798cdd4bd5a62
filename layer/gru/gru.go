// Package gru implements a gated recurrent unit cell
package gru

import "math/rand"

import "github.com/pkg/errors"

import "github.com/neurlang/recognizer/tensor"
import "github.com/neurlang/recognizer/vocab"

// GRULayer is the architecture of a GRU cell.
type GRULayer struct {
	in, units int
}

// GRU is a cell with weights. The update follows h' = z*h + (1-z)*candidate.
type GRU struct {
	wz, wr, wh *tensor.Tensor
	uz, ur, uh *tensor.Tensor
	bz, br, bh *tensor.Tensor
}

// MustNew creates a new gru layer spec
func MustNew(in, units int) *GRULayer {
	o, err := New(in, units)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new gru layer spec with in inputs and units state width
func New(in, units int) (*GRULayer, error) {
	if in <= 0 || units <= 0 {
		return nil, errors.Wrapf(vocab.ErrConfiguration, "gru %d inputs %d units", in, units)
	}
	return &GRULayer{in: in, units: units}, nil
}

// Units is the state width.
func (i *GRULayer) Units() int { return i.units }

// Lay creates a cell with fresh weights
func (i *GRULayer) Lay(rng *rand.Rand) *GRU {
	return &GRU{
		wz: tensor.Param(i.in, i.units, rng),
		wr: tensor.Param(i.in, i.units, rng),
		wh: tensor.Param(i.in, i.units, rng),
		uz: tensor.Param(i.units, i.units, rng),
		ur: tensor.Param(i.units, i.units, rng),
		uh: tensor.Param(i.units, i.units, rng),
		bz: tensor.Zeros(1, i.units),
		br: tensor.Zeros(1, i.units),
		bh: tensor.Zeros(1, i.units),
	}
}

func gate(x, w, h, u, b *tensor.Tensor) *tensor.Tensor {
	return tensor.AddRow(tensor.Add(tensor.MatMul(x, w), tensor.MatMul(h, u)), b)
}

// Forward advances the state h [N, units] by the input x [N, in].
func (g *GRU) Forward(x, h *tensor.Tensor) *tensor.Tensor {
	z := tensor.Sigmoid(gate(x, g.wz, h, g.uz, g.bz))
	r := tensor.Sigmoid(gate(x, g.wr, h, g.ur, g.br))
	candidate := tensor.Tanh(gate(x, g.wh, tensor.Mul(r, h), g.uh, g.bh))
	return tensor.Add(tensor.Mul(z, h), tensor.Mul(tensor.OneMinus(z), candidate))
}

// Params lists the trainable tensors.
func (g *GRU) Params() []*tensor.Tensor {
	return []*tensor.Tensor{g.wz, g.wr, g.wh, g.uz, g.ur, g.uh, g.bz, g.br, g.bh}
}
