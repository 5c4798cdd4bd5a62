package trainer

import "math"

import "github.com/pkg/errors"
import "k8s.io/klog/v2"

import "github.com/neurlang/recognizer/datasets"
import "github.com/neurlang/recognizer/learning"
import "github.com/neurlang/recognizer/metrics"
import "github.com/neurlang/recognizer/net/encdec"
import "github.com/neurlang/recognizer/vocab"

// FitConfig drives Fit.
type FitConfig struct {
	Epochs          int
	Patience        int  // epochs without a better val_loss before stopping, 0 never stops early
	BatchSize       int  // samples per batch when datasets are built from files
	StepsPerEpoch   int  // training batches per epoch, required for infinite datasets
	ValidationSteps int  // validation batches per epoch, required for infinite datasets
	Repeat          bool // wrap built datasets to repeat endlessly
	TrainMetrics    bool // also predict training batches to report metrics
	HyperParameters learning.HyperParameters
}

// DefaultFitConfig returns the configuration the CLI starts from.
func DefaultFitConfig() FitConfig {
	return FitConfig{
		Epochs:          30,
		Patience:        5,
		BatchSize:       16,
		HyperParameters: learning.Default(),
	}
}

// History holds one value per epoch for every reported metric. Validation
// metrics carry the "val_" prefix.
type History map[string][]float64

// Epochs is the number of recorded epochs.
func (h History) Epochs() int {
	return len(h["loss"])
}

func (h History) add(prefix string, values map[string]float64) {
	for name, v := range values {
		h[prefix+name] = append(h[prefix+name], v)
	}
}

// steps resolves how many batches one epoch draws from d. Zero means the whole pass.
func steps(d datasets.Dataset, configured int, what string) (int, error) {
	if d == nil {
		return 0, errors.Wrapf(vocab.ErrConfiguration, "no %s dataset", what)
	}
	if d.Cardinality() == datasets.InfiniteCardinality && configured <= 0 {
		return 0, errors.Wrapf(vocab.ErrConfiguration, "%s dataset is infinite and no step count is set", what)
	}
	if configured < 0 {
		return 0, nil
	}
	return configured, nil
}

// iterate starts a pass over d limited to n batches, or the whole pass for n == 0.
func iterate(d datasets.Dataset, n int) datasets.Iterator {
	if n > 0 {
		return datasets.Take(d, n)
	}
	return d.Iterate()
}

// run feeds every batch of it to step. Per-batch values are averaged, except
// those of the accumulators in ms which already aggregate and are reported as last seen.
func run(it datasets.Iterator, ms metrics.Set, step func(datasets.Batch) (map[string]float64, error)) (map[string]float64, error) {
	var sums = make(map[string]float64)
	var last = make(map[string]float64)
	var accumulated = make(map[string]bool)
	for _, a := range ms {
		accumulated[a.Name()] = true
	}
	var n int
	for b, ok := it.Next(); ok; b, ok = it.Next() {
		result, err := step(b)
		if err != nil {
			return nil, errors.Wrapf(err, "batch %d", n)
		}
		for name, v := range result {
			sums[name] += v
			last[name] = v
		}
		n++
		klog.V(3).InfoS("Batch", "batch", n, "loss", loggable(result["loss"]))
	}
	if n == 0 {
		return nil, errors.Wrap(datasets.ErrShapeMismatch, "dataset produced no batches")
	}
	for name := range sums {
		if accumulated[name] {
			sums[name] = last[name]
		} else {
			sums[name] /= float64(n)
		}
	}
	return sums, nil
}

// Fit trains m on train, validating on valid after every epoch. It returns the
// history, the epoch of the lowest validation loss and the validation edit
// distance of every epoch.
func Fit(m *encdec.Model, train, valid datasets.Dataset, cfg FitConfig) (History, int, map[int]float64, error) {
	if cfg.Epochs <= 0 {
		return nil, 0, nil, errors.Wrapf(vocab.ErrConfiguration, "%d epochs", cfg.Epochs)
	}
	trainSteps, err := steps(train, cfg.StepsPerEpoch, "training")
	if err != nil {
		return nil, 0, nil, err
	}
	validSteps, err := steps(valid, cfg.ValidationSteps, "validation")
	if err != nil {
		return nil, 0, nil, err
	}
	opt, err := cfg.HyperParameters.NewOptimizer()
	if err != nil {
		return nil, 0, nil, err
	}
	h := m.Handler()
	editDistance := metrics.NewEditDistance(h, false)
	ms := metrics.Set{editDistance, metrics.NewSequenceAccuracy(h)}
	var trainMs metrics.Set
	if cfg.TrainMetrics {
		trainMs = ms
	}

	var history = make(History)
	var edist = make(map[int]float64)
	var best, wait = -1, 0
	var bestLoss = math.Inf(1)
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		ms.Reset()
		trained, err := run(iterate(train, trainSteps), trainMs, func(b datasets.Batch) (map[string]float64, error) {
			return m.TrainStep(b, opt, trainMs)
		})
		if err != nil {
			return history, best, edist, errors.Wrapf(err, "epoch %d training", epoch+1)
		}
		ms.Reset()
		validated, err := run(iterate(valid, validSteps), ms, func(b datasets.Batch) (map[string]float64, error) {
			return m.TestStep(b, ms)
		})
		if err != nil {
			return history, best, edist, errors.Wrapf(err, "epoch %d validation", epoch+1)
		}
		history.add("", trained)
		history.add("val_", validated)
		edist[epoch] = validated[editDistance.Name()]

		klog.V(1).InfoS("Epoch", "model", m.Name(), "epoch", epoch+1, "loss", loggable(trained["loss"]),
			"val_loss", loggable(validated["loss"]), "val_edit_distance", loggable(edist[epoch]))

		if validated["loss"] < bestLoss {
			best, bestLoss, wait = epoch, validated["loss"], 0
			continue
		}
		wait++
		if cfg.Patience > 0 && wait >= cfg.Patience {
			klog.V(1).InfoS("Early stopping", "model", m.Name(), "epoch", epoch+1, "best_epoch", best+1)
			break
		}
	}
	if best < 0 {
		return history, best, edist, errors.Wrapf(ErrTrainingFailure, "model %s reached no finite validation loss", m.Name())
	}
	return history, best, edist, nil
}
