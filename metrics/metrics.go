// Package metrics implements accumulators scoring predicted token sequences
// against the truth. Accumulators are explicit state: whoever owns them resets them.
package metrics

import "github.com/neurlang/recognizer/parallel"
import "github.com/neurlang/recognizer/vocab"

// Accumulator aggregates a metric over batches until Reset.
type Accumulator interface {
	Name() string
	Update(truth, predicted [][]int)
	Result() float64
	Reset()
}

// Set is a group of accumulators updated together.
type Set []Accumulator

// Update feeds one batch to every accumulator.
func (s Set) Update(truth, predicted [][]int) {
	for _, a := range s {
		a.Update(truth, predicted)
	}
}

// Reset clears every accumulator.
func (s Set) Reset() {
	for _, a := range s {
		a.Reset()
	}
}

// Results reports every accumulator by name.
func (s Set) Results() map[string]float64 {
	var o = make(map[string]float64, len(s))
	for _, a := range s {
		o[a.Name()] = a.Result()
	}
	return o
}

// Trim returns the tokens between the start token and the first end or padding.
func Trim(row []int, start, end int) []int {
	var i int
	if len(row) > 0 && row[0] == start {
		i = 1
	}
	for j := i; j < len(row); j++ {
		if row[j] == end || row[j] == vocab.Padding {
			return row[i:j]
		}
	}
	return row[i:]
}

// Levenshtein is the edit distance between two token sequences.
func Levenshtein(a, b []int) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// EditDistance is the mean edit distance per sequence, optionally divided by the true length.
type EditDistance struct {
	start, end int
	normalize  bool
	sum        float64
	count      int
}

// NewEditDistance scores sequences of the vocabulary h.
func NewEditDistance(h vocab.Handler, normalize bool) *EditDistance {
	return &EditDistance{start: h.StartToken(), end: h.EndToken(), normalize: normalize}
}

func (e *EditDistance) Name() string { return "edit_distance" }

func (e *EditDistance) Update(truth, predicted [][]int) {
	var d = make([]float64, len(truth))
	parallel.ForEach(len(truth), 0, func(i int) {
		t := Trim(truth[i], e.start, e.end)
		p := Trim(predicted[i], e.start, e.end)
		d[i] = float64(Levenshtein(t, p))
		if e.normalize && len(t) > 0 {
			d[i] /= float64(len(t))
		}
	})
	for _, v := range d {
		e.sum += v
	}
	e.count += len(truth)
}

func (e *EditDistance) Result() float64 {
	if e.count == 0 {
		return 0
	}
	return e.sum / float64(e.count)
}

func (e *EditDistance) Reset() { e.sum, e.count = 0, 0 }

// SequenceAccuracy is the fraction of sequences predicted exactly.
type SequenceAccuracy struct {
	start, end     int
	correct, count int
}

// NewSequenceAccuracy scores sequences of the vocabulary h.
func NewSequenceAccuracy(h vocab.Handler) *SequenceAccuracy {
	return &SequenceAccuracy{start: h.StartToken(), end: h.EndToken()}
}

func (s *SequenceAccuracy) Name() string { return "sequence_accuracy" }

func (s *SequenceAccuracy) Update(truth, predicted [][]int) {
	for i := range truth {
		if Levenshtein(Trim(truth[i], s.start, s.end), Trim(predicted[i], s.start, s.end)) == 0 {
			s.correct++
		}
	}
	s.count += len(truth)
}

func (s *SequenceAccuracy) Result() float64 {
	if s.count == 0 {
		return 0
	}
	return float64(s.correct) / float64(s.count)
}

func (s *SequenceAccuracy) Reset() { s.correct, s.count = 0, 0 }
