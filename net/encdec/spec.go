package encdec

import "github.com/pkg/errors"

import "github.com/neurlang/recognizer/layer"
import "github.com/neurlang/recognizer/layer/crossattention"
import _ "github.com/neurlang/recognizer/layer/conv2d"
import _ "github.com/neurlang/recognizer/layer/patch"
import "github.com/neurlang/recognizer/learning"
import "github.com/neurlang/recognizer/vocab"

// Spec is the configuration a model can be rebuilt from.
type Spec struct {
	Backbone   string                // registered backbone name
	Encoder    layer.EncoderConfig   // backbone sizes
	Decoder    crossattention.Config // decoder sizes
	DecoderRNN string                // empty when the backbone produces the initial state
	Loss       string                // learning.Loss name
}

// DefaultSpec sizes a model for h x w x c images over the vocabulary v.
// Backbones which produce an initial state get one as wide as the decoder.
func DefaultSpec(backbone string, v vocab.Handler, h, w, c int) Spec {
	s := Spec{
		Backbone: backbone,
		Encoder: layer.EncoderConfig{
			Height:     h,
			Width:      w,
			Channels:   c,
			PatchWidth: 2,
			Units:      32,
		},
		Decoder: crossattention.Config{
			Vocabulary: v.Size(),
			Embedding:  16,
			Features:   32,
			Units:      64,
			Attention:  32,
		},
		DecoderRNN: crossattention.RNN,
		Loss:       "sparse",
	}
	if backbone == "patch_hidden" {
		s.Encoder.Hidden = s.Decoder.Units
		s.DecoderRNN = ""
	}
	return s
}

// FromSpec builds a model from its configuration with fresh weights from seed.
func FromSpec(s Spec, h vocab.Handler, seed int64) (*Model, error) {
	if err := vocab.Validate(h); err != nil {
		return nil, err
	}
	if s.Decoder.Vocabulary != h.Size() {
		return nil, errors.Wrapf(vocab.ErrConfiguration, "decoder vocabulary %d, handler vocabulary %d", s.Decoder.Vocabulary, h.Size())
	}
	if s.Decoder.Features != s.Encoder.Units {
		return nil, errors.Wrapf(vocab.ErrConfiguration, "decoder expects %d features, backbone makes %d", s.Decoder.Features, s.Encoder.Units)
	}
	if s.DecoderRNN == "" && s.Encoder.Hidden != s.Decoder.Units {
		return nil, errors.Wrapf(vocab.ErrConfiguration, "backbone state width %d, decoder state width %d", s.Encoder.Hidden, s.Decoder.Units)
	}
	enc, err := layer.Lookup(s.Backbone, s.Encoder)
	if err != nil {
		return nil, err
	}
	dec, err := crossattention.New(s.Decoder)
	if err != nil {
		return nil, err
	}
	loss, err := learning.Loss(s.Loss)
	if err != nil {
		return nil, err
	}
	m, err := New(enc, dec, h, s.DecoderRNN, loss, seed)
	if err != nil {
		return nil, err
	}
	m.spec = &s
	return m, nil
}

// MustFromSpec is FromSpec which panics on error.
func MustFromSpec(s Spec, h vocab.Handler, seed int64) *Model {
	m, err := FromSpec(s, h, seed)
	if err != nil {
		panic(err.Error())
	}
	return m
}
