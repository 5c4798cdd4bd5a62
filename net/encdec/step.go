package encdec

import "github.com/pkg/errors"

import "github.com/neurlang/recognizer/datasets"
import "github.com/neurlang/recognizer/learning"
import "github.com/neurlang/recognizer/metrics"
import "github.com/neurlang/recognizer/tensor"
import "github.com/neurlang/recognizer/vocab"

// ComputeLoss runs the decoder with teacher forcing over positions
// 1..MaxLength-1 and sums the per-step losses. The tensor is the raw sum; the
// reported "loss" is the sum divided by MaxLength. When ms is not empty, the
// batch is also predicted and the accumulators are updated and reported.
func (m *Model) ComputeLoss(b datasets.Batch, ms metrics.Set) (*tensor.Tensor, map[string]float64, error) {
	if err := vocab.Validate(m.handler); err != nil {
		return nil, nil, err
	}
	maxLength := m.handler.MaxLength()
	if err := b.Check(maxLength, m.handler.StartToken(), m.handler.Size()); err != nil {
		return nil, nil, err
	}
	ctx, hidden, err := m.encode(b.Images, b.Height, b.Width, b.Channels)
	if err != nil {
		return nil, nil, err
	}
	var loss *tensor.Tensor
	input := m.startColumn(b.Len())
	for i := 1; i < maxLength; i++ {
		logits, next, _, err := m.decoder.Step(input, ctx, hidden)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "decoder step %d", i)
		}
		target := b.Column(i)
		step := m.loss(target, logits)
		if loss == nil {
			loss = step
		} else {
			loss = tensor.Add(loss, step)
		}
		hidden = next
		input = target
	}
	result := map[string]float64{"loss": loss.Value() / float64(maxLength)}
	if len(ms) > 0 {
		p, err := m.Predict(b.Images, b.Height, b.Width, b.Channels, FixedLength, false)
		if err != nil {
			return nil, nil, err
		}
		ms.Update(b.Tokens, p.Tokens)
		for name, v := range ms.Results() {
			result[name] = v
		}
	}
	return loss, result, nil
}

// TrainStep computes the loss of b and applies exactly one optimizer update
// to Params. Optimizers implementing learning.Clipper get their gradients clipped first.
func (m *Model) TrainStep(b datasets.Batch, opt learning.Optimizer, ms metrics.Set) (map[string]float64, error) {
	params := m.Params()
	learning.ZeroGrad(params)
	loss, result, err := m.ComputeLoss(b, ms)
	if err != nil {
		return nil, err
	}
	tensor.Backward(loss)
	if c, ok := opt.(learning.Clipper); ok && c.MaxNorm() > 0 {
		result["grad_norm"] = learning.ClipNorm(params, c.MaxNorm())
	}
	opt.Step(params)
	return result, nil
}

// TestStep reports the loss and metrics of b without touching weights or gradients.
func (m *Model) TestStep(b datasets.Batch, ms metrics.Set) (map[string]float64, error) {
	_, result, err := m.ComputeLoss(b, ms)
	return result, err
}
