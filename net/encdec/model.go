// Package encdec implements the encoder-decoder sequence model: a backbone
// encodes an image into features and an attention decoder emits one token per
// step, trained with teacher forcing and run autoregressively at inference.
package encdec

import "math/rand"

import "github.com/google/uuid"
import "github.com/pkg/errors"

import "github.com/neurlang/recognizer/layer"
import "github.com/neurlang/recognizer/learning"
import "github.com/neurlang/recognizer/tensor"
import "github.com/neurlang/recognizer/vocab"

// DefaultName is the name of a model nobody renamed.
const DefaultName = "EncoderDecoderModel"

// Model is the sequence model. A model owns its weights; the vocabulary is shared read-only.
type Model struct {
	spec       *Spec
	encSpec    layer.EncoderSpec
	decSpec    layer.DecoderSpec
	encoder    layer.Encoder
	decoder    layer.Decoder
	handler    vocab.Handler
	decoderRNN string
	loss       learning.LossFunc
	name       string
	id         uuid.UUID
}

// New lays fresh weights for the architectures enc and dec from seed.
// decoderRNN names the decoder layer whose width sizes a zero initial state;
// leave it empty when the encoder supplies the initial state itself.
func New(enc layer.EncoderSpec, dec layer.DecoderSpec, h vocab.Handler, decoderRNN string, loss learning.LossFunc, seed int64) (*Model, error) {
	if enc == nil || dec == nil {
		return nil, errors.Wrap(vocab.ErrConfiguration, "model needs an encoder and a decoder")
	}
	if err := vocab.Validate(h); err != nil {
		return nil, err
	}
	if loss == nil {
		loss = learning.SparseCrossEntropy
	}
	rng := rand.New(rand.NewSource(seed))
	m := &Model{
		encSpec:    enc,
		decSpec:    dec,
		encoder:    enc.Lay(rng),
		decoder:    dec.Lay(rng),
		handler:    h,
		decoderRNN: decoderRNN,
		loss:       loss,
		name:       DefaultName,
		id:         uuid.New(),
	}
	if decoderRNN != "" {
		if _, ok := m.decoder.Units(decoderRNN); !ok {
			return nil, errors.Wrapf(vocab.ErrConfiguration, "decoder has no recurrent layer %q", decoderRNN)
		}
	}
	return m, nil
}

// MustNew is New which panics on error.
func MustNew(enc layer.EncoderSpec, dec layer.DecoderSpec, h vocab.Handler, decoderRNN string, loss learning.LossFunc, seed int64) *Model {
	m, err := New(enc, dec, h, decoderRNN, loss, seed)
	if err != nil {
		panic(err.Error())
	}
	return m
}

// FreshInstance clones the architecture of m with new weights from seed.
// Nothing learned by m is carried over.
func (m *Model) FreshInstance(seed int64) (*Model, error) {
	o, err := New(m.encSpec, m.decSpec, m.handler, m.decoderRNN, m.loss, seed)
	if err != nil {
		return nil, err
	}
	o.spec = m.spec
	return o, nil
}

func (m *Model) Name() string { return m.name }

// Rename sets the name and issues a new id.
func (m *Model) Rename(name string) {
	m.name = name
	m.id = uuid.New()
}

func (m *Model) ID() uuid.UUID { return m.id }

func (m *Model) Handler() vocab.Handler { return m.handler }

// Spec reports the configuration m was built from, if any.
func (m *Model) Spec() (Spec, bool) {
	if m.spec == nil {
		return Spec{}, false
	}
	return *m.spec, true
}

// Params lists the trainable tensors of encoder and decoder.
func (m *Model) Params() []*tensor.Tensor {
	return append(m.encoder.Params(), m.decoder.Params()...)
}

// encode runs the backbone and picks the initial decoder state.
func (m *Model) encode(images [][]float64, h, w, c int) (layer.Context, *tensor.Tensor, error) {
	ctx, err := m.encoder.Encode(images, h, w, c)
	if err != nil {
		return ctx, nil, err
	}
	if m.decoderRNN != "" {
		units, ok := m.decoder.Units(m.decoderRNN)
		if !ok || units <= 0 {
			return ctx, nil, errors.Wrapf(vocab.ErrConfiguration, "decoder has no recurrent layer %q", m.decoderRNN)
		}
		return ctx, tensor.Zeros(len(images), units), nil
	}
	if ctx.Hidden == nil {
		return ctx, nil, errors.Wrap(vocab.ErrConfiguration, "encoder supplies no initial state and no decoder recurrent layer is named")
	}
	return ctx, ctx.Hidden, nil
}

// startColumn is the start token once per row.
func (m *Model) startColumn(n int) []int {
	o := make([]int, n)
	for i := range o {
		o[i] = m.handler.StartToken()
	}
	return o
}

// Instantiator creates models of one architecture with fresh weights.
type Instantiator interface {
	Instantiate(seed int64) (*Model, error)
}

// Architecture re-instantiates by cloning the prototype's architecture.
type Architecture struct {
	*Model
}

func (a Architecture) Instantiate(seed int64) (*Model, error) {
	return a.FreshInstance(seed)
}

// Configuration re-instantiates by rebuilding the prototype from its Spec.
type Configuration struct {
	*Model
}

func (c Configuration) Instantiate(seed int64) (*Model, error) {
	spec, ok := c.Spec()
	if !ok {
		return nil, errors.Wrap(vocab.ErrConfiguration, "model was not built from a spec")
	}
	return FromSpec(spec, c.Handler(), seed)
}
