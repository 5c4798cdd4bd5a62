package datasets

import "math/rand"
import "sort"
import "time"

import "github.com/pkg/errors"

import "github.com/neurlang/recognizer/vocab"

// Fold is one train/validation split of sample indices.
type Fold struct {
	Train []int
	Valid []int
}

// KFold shuffles 0..n-1 and cuts it into k validation sets. Every index is
// validation in exactly one fold and training in the remaining k-1. The first
// n%k folds get one extra sample. A nil seed shuffles from the clock.
func KFold(n, k int, seed *int64) ([]Fold, error) {
	if k < 2 {
		return nil, errors.Wrapf(vocab.ErrConfiguration, "k-fold needs at least 2 splits, got %d", k)
	}
	if n < k {
		return nil, errors.Wrapf(vocab.ErrConfiguration, "cannot split %d samples into %d folds", n, k)
	}
	var src int64
	if seed != nil {
		src = *seed
	} else {
		src = time.Now().UnixNano()
	}
	perm := rand.New(rand.NewSource(src)).Perm(n)

	var folds = make([]Fold, k)
	var start int
	for f := range folds {
		size := n / k
		if f < n%k {
			size++
		}
		valid := append([]int(nil), perm[start:start+size]...)
		train := make([]int, 0, n-size)
		train = append(train, perm[:start]...)
		train = append(train, perm[start+size:]...)
		sort.Ints(valid)
		sort.Ints(train)
		folds[f] = Fold{Train: train, Valid: valid}
		start += size
	}
	return folds, nil
}
