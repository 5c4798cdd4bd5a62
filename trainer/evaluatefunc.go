package trainer

import "github.com/pkg/errors"

import "github.com/neurlang/recognizer/datasets"
import "github.com/neurlang/recognizer/net/encdec"
import "github.com/neurlang/recognizer/vocab"

// Evaluate is the mean reported loss of m over steps batches of d, or over a
// whole pass when steps is 0. Infinite datasets need a positive steps.
func Evaluate(m *encdec.Model, d datasets.Dataset, steps int) (float64, error) {
	if steps <= 0 && d.Cardinality() == datasets.InfiniteCardinality {
		return 0, errors.Wrap(vocab.ErrConfiguration, "evaluating an infinite dataset needs a step count")
	}
	result, err := run(iterate(d, steps), nil, func(b datasets.Batch) (map[string]float64, error) {
		return m.TestStep(b, nil)
	})
	if err != nil {
		return 0, err
	}
	return result["loss"], nil
}
