// Package crossattention implements the attention decoder: additive attention
// over the encoder locations feeding a GRU, one token per step.
package crossattention

import "math/rand"

import "github.com/pkg/errors"

import "github.com/neurlang/recognizer/datasets"
import "github.com/neurlang/recognizer/layer"
import "github.com/neurlang/recognizer/layer/full"
import "github.com/neurlang/recognizer/layer/gru"
import "github.com/neurlang/recognizer/tensor"
import "github.com/neurlang/recognizer/vocab"

// RNN names the recurrent layer of the decoder.
const RNN = "gru"

// Config sizes the decoder.
type Config struct {
	Vocabulary int // output classes, also the embedding rows
	Embedding  int // token embedding width
	Features   int // encoder feature width D
	Units      int // GRU state width
	Attention  int // attention hidden width
}

type CrossAttentionLayer struct {
	cfg    Config
	keys   *full.FullLayer
	query  *full.FullLayer
	score  *full.FullLayer
	cell   *gru.GRULayer
	output *full.FullLayer
}

type CrossAttention struct {
	spec      *CrossAttentionLayer
	embedding *tensor.Tensor
	keys      *full.Full
	query     *full.Full
	score     *full.Full
	cell      *gru.GRU
	output    *full.Full
}

// MustNew creates a new attention decoder spec
func MustNew(cfg Config) *CrossAttentionLayer {
	o, err := New(cfg)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new attention decoder spec
func New(cfg Config) (o *CrossAttentionLayer, err error) {
	if cfg.Vocabulary < 3 || cfg.Embedding <= 0 {
		return nil, errors.Wrapf(vocab.ErrConfiguration, "decoder vocabulary %d embedding %d", cfg.Vocabulary, cfg.Embedding)
	}
	o = &CrossAttentionLayer{cfg: cfg}
	if o.keys, err = full.New(cfg.Features, cfg.Attention, full.Linear); err != nil {
		return nil, err
	}
	if o.query, err = full.New(cfg.Units, cfg.Attention, full.Linear); err != nil {
		return nil, err
	}
	if o.score, err = full.New(cfg.Attention, 1, full.Linear); err != nil {
		return nil, err
	}
	if o.cell, err = gru.New(cfg.Embedding+cfg.Features, cfg.Units); err != nil {
		return nil, err
	}
	if o.output, err = full.New(cfg.Units+cfg.Features, cfg.Vocabulary, full.Linear); err != nil {
		return nil, err
	}
	return o, nil
}

// Lay creates a decoder with fresh weights
func (i *CrossAttentionLayer) Lay(rng *rand.Rand) layer.Decoder {
	return &CrossAttention{
		spec:      i,
		embedding: tensor.Param(i.cfg.Vocabulary, i.cfg.Embedding, rng),
		keys:      i.keys.Lay(rng),
		query:     i.query.Lay(rng),
		score:     i.score.Lay(rng),
		cell:      i.cell.Lay(rng),
		output:    i.output.Lay(rng),
	}
}

// Units reports the GRU width under the name RNN.
func (f *CrossAttention) Units(name string) (int, bool) {
	if name != RNN {
		return 0, false
	}
	return f.spec.cfg.Units, true
}

// attend weighs the locations by how well they match the state.
func (f *CrossAttention) attend(ctx layer.Context, hidden *tensor.Tensor) (context, weights *tensor.Tensor) {
	q := f.query.Forward(hidden)
	var scores = make([]*tensor.Tensor, len(ctx.Features))
	for l, feat := range ctx.Features {
		scores[l] = f.score.Forward(tensor.Tanh(tensor.Add(f.keys.Forward(feat), q)))
	}
	weights = tensor.SoftmaxRows(tensor.ConcatCols(scores...))
	for l, feat := range ctx.Features {
		part := tensor.MulCol(feat, tensor.Col(weights, l))
		if context == nil {
			context = part
		} else {
			context = tensor.Add(context, part)
		}
	}
	return
}

func (f *CrossAttention) Step(tokens []int, ctx layer.Context, hidden *tensor.Tensor) (logits, next, attention *tensor.Tensor, err error) {
	cfg := f.spec.cfg
	if len(ctx.Features) == 0 {
		return nil, nil, nil, errors.Wrap(datasets.ErrShapeMismatch, "decoder got no encoder features")
	}
	if len(tokens) != hidden.Rows() || ctx.Features[0].Rows() != hidden.Rows() {
		return nil, nil, nil, errors.Wrapf(datasets.ErrShapeMismatch, "%d tokens, %d feature rows, %d state rows",
			len(tokens), ctx.Features[0].Rows(), hidden.Rows())
	}
	if hidden.Cols() != cfg.Units || ctx.Features[0].Cols() != cfg.Features {
		return nil, nil, nil, errors.Wrapf(datasets.ErrShapeMismatch, "state width %d, feature width %d, want %d and %d",
			hidden.Cols(), ctx.Features[0].Cols(), cfg.Units, cfg.Features)
	}
	for _, t := range tokens {
		if t < 0 || t >= cfg.Vocabulary {
			return nil, nil, nil, errors.Wrapf(datasets.ErrShapeMismatch, "token %d outside vocabulary of %d", t, cfg.Vocabulary)
		}
	}
	context, attention := f.attend(ctx, hidden)
	x := tensor.ConcatCols(tensor.Gather(f.embedding, tokens), context)
	next = f.cell.Forward(x, hidden)
	logits = f.output.Forward(tensor.ConcatCols(next, context))
	return logits, next, attention, nil
}

func (f *CrossAttention) Params() (o []*tensor.Tensor) {
	o = append(o, f.embedding)
	o = append(o, f.keys.Params()...)
	o = append(o, f.query.Params()...)
	o = append(o, f.score.Params()...)
	o = append(o, f.cell.Params()...)
	o = append(o, f.output.Params()...)
	return
}
