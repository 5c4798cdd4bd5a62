package trainer

import "fmt"
import "time"

import "github.com/pkg/errors"
import "k8s.io/klog/v2"

import "github.com/neurlang/recognizer/datasets"
import "github.com/neurlang/recognizer/hash"
import "github.com/neurlang/recognizer/net/encdec"

// ErrTrainingFailure marks an error which aborted a k-fold run.
var ErrTrainingFailure = errors.New("training failure")

// FoldError is the error of the fold which aborted a k-fold run. It is an
// ErrTrainingFailure and unwraps to the fold's own error.
type FoldError struct {
	Fold int // zero based
	Err  error
}

func (e *FoldError) Error() string {
	return fmt.Sprintf("fold %d: %v", e.Fold+1, e.Err)
}

func (e *FoldError) Unwrap() error { return e.Err }

func (e *FoldError) Cause() error { return e.Err }

func (e *FoldError) Is(target error) bool { return target == ErrTrainingFailure }

// ValidSet is the validation data of a fold with the sample indices it was built from.
type ValidSet struct {
	Dataset datasets.Dataset
	Idx     []int
}

// Artifacts is what training one fold produces.
type Artifacts struct {
	Valid        datasets.Dataset
	ValidIdx     []int
	BestEpoch    int
	EditDistance map[int]float64 // validation edit distance per epoch
	History      History
	Model        *encdec.Model
}

// FoldFunc trains the fresh model m on the samples at trainIdx and validates it on validIdx.
type FoldFunc func(m *encdec.Model, paths, labels []string, trainIdx, validIdx []int) (Artifacts, error)

// Folds holds the outcome of every fold as parallel lists, in fold order.
type Folds struct {
	Valid         []ValidSet
	BestEpochs    []int
	EditDistances []map[int]float64
	Histories     []History
	Models        []*encdec.Model
}

// Len is the number of folds. Lists of differing lengths are an error.
func (f *Folds) Len() (int, error) {
	n := len(f.Models)
	if len(f.Valid) != n || len(f.BestEpochs) != n || len(f.EditDistances) != n || len(f.Histories) != n {
		return 0, errors.Wrapf(datasets.ErrShapeMismatch, "fold lists of %d, %d, %d, %d and %d entries",
			len(f.Valid), len(f.BestEpochs), len(f.EditDistances), len(f.Histories), n)
	}
	return n, nil
}

// Fold gathers the i-th entry of every list.
func (f *Folds) Fold(i int) Artifacts {
	return Artifacts{
		Valid:        f.Valid[i].Dataset,
		ValidIdx:     f.Valid[i].Idx,
		BestEpoch:    f.BestEpochs[i],
		EditDistance: f.EditDistances[i],
		History:      f.Histories[i],
		Model:        f.Models[i],
	}
}

func (f *Folds) add(a Artifacts) {
	f.Valid = append(f.Valid, ValidSet{Dataset: a.Valid, Idx: a.ValidIdx})
	f.BestEpochs = append(f.BestEpochs, a.BestEpoch)
	f.EditDistances = append(f.EditDistances, a.EditDistance)
	f.Histories = append(f.Histories, a.History)
	f.Models = append(f.Models, a.Model)
}

// KFold trains one model per cross-validation split.
type KFold struct {
	Splits int
	Seed   *int64 // nil shuffles and seeds from the clock

	// Subclassed rebuilds every fold's model from the prototype's Spec instead
	// of cloning its architecture.
	Subclassed bool
}

// Run trains a fresh instance of proto on every fold in order, named Model_1,
// Model_2 and so on. The first failing fold aborts the run.
func (k KFold) Run(proto *encdec.Model, paths, labels []string, fn FoldFunc) (*Folds, error) {
	if len(paths) != len(labels) {
		return nil, errors.Wrapf(datasets.ErrShapeMismatch, "%d paths with %d labels", len(paths), len(labels))
	}
	splits, err := datasets.KFold(len(paths), k.Splits, k.Seed)
	if err != nil {
		return nil, err
	}
	var inst encdec.Instantiator = encdec.Architecture{Model: proto}
	if k.Subclassed {
		inst = encdec.Configuration{Model: proto}
	}
	var base = time.Now().UnixNano()
	if k.Seed != nil {
		base = *k.Seed
	}

	var folds = new(Folds)
	for i, split := range splits {
		m, err := inst.Instantiate(hash.Seed(base, i))
		if err != nil {
			return nil, errors.Wrapf(err, "instantiate fold %d", i+1)
		}
		m.Rename(fmt.Sprintf("Model_%d", i+1))
		klog.InfoS("Fold training", "fold", i+1, "folds", len(splits), "model", m.Name(), "id", m.ID(),
			"train", len(split.Train), "valid", len(split.Valid))

		a, err := fn(m, paths, labels, split.Train, split.Valid)
		if err != nil {
			klog.ErrorS(err, "Fold failed", "fold", i+1)
			return nil, &FoldError{Fold: i, Err: err}
		}
		if a.Model == nil {
			a.Model = m
		}
		if a.ValidIdx == nil {
			a.ValidIdx = split.Valid
		}
		folds.add(a)
	}
	return folds, nil
}
