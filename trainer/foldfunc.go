package trainer

import "math/rand"

import "github.com/neurlang/recognizer/datasets"
import "github.com/neurlang/recognizer/hash"
import "github.com/neurlang/recognizer/net/encdec"

// NewFoldFunc returns a FoldFunc which loads the fold's samples with loader,
// encodes their labels with enc and fits the model with cfg.
func NewFoldFunc(loader datasets.Loader, enc datasets.Encoder, cfg FitConfig, seed int64) FoldFunc {
	return func(m *encdec.Model, paths, labels []string, trainIdx, validIdx []int) (Artifacts, error) {
		train, err := datasets.Build(loader, enc, paths, labels, trainIdx, cfg.BatchSize)
		if err != nil {
			return Artifacts{}, err
		}
		valid, err := datasets.Build(loader, enc, paths, labels, validIdx, cfg.BatchSize)
		if err != nil {
			return Artifacts{}, err
		}
		train.Shuffle(rand.New(rand.NewSource(shuffleSeed(seed, validIdx))))

		var trainDs, validDs datasets.Dataset = train, valid
		fit := cfg
		if cfg.Repeat {
			trainDs, validDs = datasets.Repeat(train), datasets.Repeat(valid)
			if fit.StepsPerEpoch <= 0 {
				fit.StepsPerEpoch = train.Cardinality()
			}
			if fit.ValidationSteps <= 0 {
				fit.ValidationSteps = valid.Cardinality()
			}
		}
		history, best, edist, err := Fit(m, trainDs, validDs, fit)
		return Artifacts{
			Valid:        validDs,
			ValidIdx:     validIdx,
			BestEpoch:    best,
			EditDistance: edist,
			History:      history,
			Model:        m,
		}, err
	}
}

// shuffleSeed differs between folds: validation sets are disjoint, so their
// first indices are too.
func shuffleSeed(seed int64, validIdx []int) int64 {
	if len(validIdx) == 0 {
		return seed
	}
	return hash.Seed(seed, validIdx[0])
}
