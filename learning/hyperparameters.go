// Package learning implements the gradient-based learning stage: losses,
// optimizers and their hyperparameters.
package learning

import "strings"

import "github.com/pkg/errors"

import "github.com/neurlang/recognizer/vocab"

type HyperParameters struct {
	Optimizer    string  // "adam" or "sgd"
	LearningRate float64 // step size
	WeightDecay  float64 // L2 regularization added to the gradient
	ClipNorm     float64 // global gradient norm limit, 0 disables

	Beta1   float64 // adam first moment decay
	Beta2   float64 // adam second moment decay
	Epsilon float64 // adam denominator guard
}

// Default returns the hyperparameters the recognizer trains with unless told otherwise.
func Default() HyperParameters {
	return HyperParameters{
		Optimizer:    "adam",
		LearningRate: 3e-3,
		ClipNorm:     5,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
	}
}

// NewOptimizer creates the optimizer named by h.Optimizer.
func (h *HyperParameters) NewOptimizer() (Optimizer, error) {
	if h.LearningRate <= 0 {
		return nil, errors.Wrapf(vocab.ErrConfiguration, "learning rate %g", h.LearningRate)
	}
	switch strings.ToLower(h.Optimizer) {
	case "adam", "":
		return &Adam{h: *h}, nil
	case "sgd":
		return &SGD{h: *h}, nil
	}
	return nil, errors.Wrapf(vocab.ErrConfiguration, "unknown optimizer %q", h.Optimizer)
}
