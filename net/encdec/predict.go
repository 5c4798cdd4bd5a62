package encdec

import "math"

import "github.com/pkg/errors"

import "github.com/neurlang/recognizer/datasets"
import "github.com/neurlang/recognizer/layer"
import "github.com/neurlang/recognizer/tensor"
import "github.com/neurlang/recognizer/vocab"

// Mode selects when autoregressive prediction stops.
type Mode byte

const (
	// EarlyStop ends once every sequence emitted the end token.
	EarlyStop Mode = iota

	// FixedLength always runs MaxLength-1 steps.
	FixedLength
)

// Prediction is the outcome of Predict.
type Prediction struct {
	Tokens    [][]int       // [batch][MaxLength], start token first, padding after end
	Attention [][][]float64 // [batch][steps][locations], only when requested
}

// decoding is the state of one autoregressive run.
type decoding struct {
	seq    [][]int
	next   []int
	done   []bool
	hidden *tensor.Tensor
	ctx    layer.Context
}

// step emits position i of every sequence. It reports whether every sequence is done.
func (m *Model) step(d *decoding, i int) (attention *tensor.Tensor, finished bool, err error) {
	logits, hidden, attention, err := m.decoder.Step(d.next, d.ctx, d.hidden)
	if err != nil {
		return nil, false, errors.Wrapf(err, "decoder step %d", i)
	}
	if logits.Cols() != m.handler.Size() {
		return nil, false, errors.Wrapf(datasets.ErrShapeMismatch, "decoder emits %d classes for vocabulary of %d", logits.Cols(), m.handler.Size())
	}
	d.hidden = hidden
	mask := m.handler.TokenMask()
	end := m.handler.EndToken()
	next := make([]int, len(d.next))
	finished = true
	for n := range next {
		best, bestScore := -1, math.Inf(-1)
		for id, score := range logits.Row(n) {
			if mask[id] {
				continue
			}
			if best < 0 || score > bestScore {
				best, bestScore = id, score
			}
		}
		if best < 0 {
			return nil, false, errors.Wrap(vocab.ErrConfiguration, "token mask forbids every token")
		}
		if d.done[n] {
			best = vocab.Padding
		}
		next[n] = best
		d.seq[n][i] = best
		d.done[n] = d.done[n] || best == end
		finished = finished && d.done[n]
	}
	d.next = next
	return attention, finished, nil
}

// Predict generates token sequences for a batch of h x w x c images. Forbidden
// tokens are never chosen and a sequence emits only padding after its end token.
func (m *Model) Predict(images [][]float64, h, w, c int, mode Mode, withAttention bool) (Prediction, error) {
	if err := vocab.Validate(m.handler); err != nil {
		return Prediction{}, err
	}
	if err := (datasets.Batch{Images: images, Height: h, Width: w, Channels: c}).CheckImages(); err != nil {
		return Prediction{}, err
	}
	ctx, hidden, err := m.encode(images, h, w, c)
	if err != nil {
		return Prediction{}, err
	}
	maxLength := m.handler.MaxLength()
	d := &decoding{
		seq:    make([][]int, len(images)),
		next:   m.startColumn(len(images)),
		done:   make([]bool, len(images)),
		hidden: hidden,
		ctx:    ctx,
	}
	for n := range d.seq {
		d.seq[n] = make([]int, maxLength)
		d.seq[n][0] = m.handler.StartToken()
	}
	var p Prediction
	if withAttention {
		p.Attention = make([][][]float64, len(images))
	}
	for i := 1; i < maxLength; i++ {
		attention, finished, err := m.step(d, i)
		if err != nil {
			return Prediction{}, err
		}
		if withAttention && attention != nil {
			for n := range p.Attention {
				p.Attention[n] = append(p.Attention[n], append([]float64(nil), attention.Row(n)...))
			}
		}
		if finished && mode == EarlyStop {
			break
		}
	}
	p.Tokens = d.seq
	return p, nil
}

// PredictBatch predicts the images of b in FixedLength mode.
func (m *Model) PredictBatch(b datasets.Batch) ([][]int, error) {
	p, err := m.Predict(b.Images, b.Height, b.Width, b.Channels, FixedLength, false)
	return p.Tokens, err
}
