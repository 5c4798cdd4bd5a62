package trainer

import "math"
import "strconv"

import "github.com/pkg/errors"
import "k8s.io/klog/v2"

import "github.com/neurlang/recognizer/datasets"

// Result is the selected fold.
type Result struct {
	Artifacts
	Fold int
	Loss float64
}

// evaluationSteps is the batch count BestFold evaluates a fold with: all of
// it for finite data, one pass worth of validation samples otherwise.
func evaluationSteps(a Artifacts) (int, error) {
	if a.Valid.Cardinality() != datasets.InfiniteCardinality {
		return 0, nil
	}
	b, ok := a.Valid.Iterate().Next()
	if !ok || b.Len() == 0 {
		return 0, errors.Wrap(datasets.ErrShapeMismatch, "validation dataset produced no batch")
	}
	if n := len(a.ValidIdx) / b.Len(); n > 0 {
		return n, nil
	}
	return 1, nil
}

// BestFold evaluates every fold's model on its validation data and returns
// the fold with the lowest loss. Ties keep the earlier fold.
func BestFold(folds *Folds) (Result, error) {
	if folds == nil {
		return Result{}, errors.Wrap(datasets.ErrShapeMismatch, "no folds")
	}
	n, err := folds.Len()
	if err != nil {
		return Result{}, err
	}
	if n == 0 {
		return Result{}, errors.Wrap(datasets.ErrShapeMismatch, "no folds")
	}
	var best = Result{Fold: -1, Loss: math.Inf(1)}
	for i := 0; i < n; i++ {
		a := folds.Fold(i)
		klog.InfoS("Fold", "fold", i+1, "mean_edit_distance", loggable(a.EditDistance[a.BestEpoch]), "best_epoch", a.BestEpoch+1)

		steps, err := evaluationSteps(a)
		if err != nil {
			return Result{}, errors.Wrapf(err, "fold %d", i+1)
		}
		loss, err := Evaluate(a.Model, a.Valid, steps)
		if err != nil {
			return Result{}, errors.Wrapf(err, "fold %d", i+1)
		}
		klog.InfoS("Fold evaluated", "fold", i+1, "loss", loggable(loss), "steps", steps)
		if loss < best.Loss {
			best = Result{Artifacts: a, Fold: i, Loss: loss}
		}
	}
	if best.Fold < 0 {
		return Result{}, errors.Wrap(ErrTrainingFailure, "no fold reached a finite validation loss")
	}
	return best, nil
}

// loggable keeps klog from failing to encode NaN and infinities.
func loggable(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return v
}
