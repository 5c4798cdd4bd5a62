package learning

import "strings"

import "github.com/pkg/errors"

import "github.com/neurlang/recognizer/tensor"
import "github.com/neurlang/recognizer/vocab"

// LossFunc scores [N, V] logits against one target id per row, as a 1x1 tensor.
type LossFunc func(targets []int, logits *tensor.Tensor) *tensor.Tensor

// SparseCrossEntropy is the mean softmax cross-entropy over all rows.
func SparseCrossEntropy(targets []int, logits *tensor.Tensor) *tensor.Tensor {
	return tensor.CrossEntropy(logits, targets, -1)
}

// MaskedCrossEntropy is the mean softmax cross-entropy over rows whose target
// is not padding. Steps after a sequence ended do not contribute.
func MaskedCrossEntropy(targets []int, logits *tensor.Tensor) *tensor.Tensor {
	return tensor.CrossEntropy(logits, targets, vocab.Padding)
}

// Loss resolves a loss function by name: "sparse" (the default) or "masked".
func Loss(name string) (LossFunc, error) {
	switch strings.ToLower(name) {
	case "sparse", "":
		return SparseCrossEntropy, nil
	case "masked":
		return MaskedCrossEntropy, nil
	}
	return nil, errors.Wrapf(vocab.ErrConfiguration, "unknown loss %q", name)
}
