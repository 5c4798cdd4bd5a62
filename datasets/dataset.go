package datasets

import "math/rand"

import "github.com/pkg/errors"

// InfiniteCardinality is reported by datasets which never run out of batches.
const InfiniteCardinality = -1

// Dataset produces batches. Every Iterate starts a new pass.
type Dataset interface {

	// Cardinality is the number of batches of one pass, or InfiniteCardinality.
	Cardinality() int

	// Iterate starts a pass over the dataset.
	Iterate() Iterator
}

// Iterator yields the batches of a single pass.
type Iterator interface {

	// Next returns the next batch, or false once the pass is exhausted.
	Next() (Batch, bool)
}

// Samples is an in-memory dataset cut into batches of a fixed size.
// The last batch may be smaller.
type Samples struct {
	images  [][]float64
	tokens  [][]int
	h, w, c int
	size    int
	shuffle *rand.Rand
}

// NewSamples creates an in-memory dataset. All images share the h x w x c geometry.
func NewSamples(images [][]float64, tokens [][]int, h, w, c, batchSize int) (*Samples, error) {
	if batchSize <= 0 {
		batchSize = 1
	}
	b := Batch{Images: images, Tokens: tokens, Height: h, Width: w, Channels: c}
	if err := b.CheckImages(); err != nil {
		return nil, err
	}
	if len(tokens) != len(images) {
		return nil, errors.Wrapf(ErrShapeMismatch, "%d images with %d token rows", len(images), len(tokens))
	}
	return &Samples{images: images, tokens: tokens, h: h, w: w, c: c, size: batchSize}, nil
}

// Shuffle makes every pass visit the samples in a new order drawn from rng.
func (s *Samples) Shuffle(rng *rand.Rand) *Samples {
	s.shuffle = rng
	return s
}

// Len is the number of samples.
func (s *Samples) Len() int { return len(s.images) }

// BatchSize is the number of samples per batch.
func (s *Samples) BatchSize() int { return s.size }

func (s *Samples) Cardinality() int {
	return (len(s.images) + s.size - 1) / s.size
}

func (s *Samples) Iterate() Iterator {
	order := make([]int, len(s.images))
	for i := range order {
		order[i] = i
	}
	if s.shuffle != nil {
		s.shuffle.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	return &samplesIterator{s: s, order: order}
}

type samplesIterator struct {
	s     *Samples
	order []int
	pos   int
}

func (it *samplesIterator) Next() (Batch, bool) {
	if it.pos >= len(it.order) {
		return Batch{}, false
	}
	end := it.pos + it.s.size
	if end > len(it.order) {
		end = len(it.order)
	}
	b := Batch{Height: it.s.h, Width: it.s.w, Channels: it.s.c}
	for _, i := range it.order[it.pos:end] {
		b.Images = append(b.Images, it.s.images[i])
		b.Tokens = append(b.Tokens, it.s.tokens[i])
	}
	it.pos = end
	return b, true
}

// Repeat turns a finite dataset into an endless one, restarting passes as they run out.
func Repeat(d Dataset) Dataset {
	return repeated{d}
}

type repeated struct {
	d Dataset
}

func (r repeated) Cardinality() int { return InfiniteCardinality }

func (r repeated) Iterate() Iterator {
	return &repeatIterator{d: r.d, it: r.d.Iterate()}
}

type repeatIterator struct {
	d  Dataset
	it Iterator
}

func (r *repeatIterator) Next() (Batch, bool) {
	b, ok := r.it.Next()
	if ok {
		return b, true
	}
	r.it = r.d.Iterate()
	return r.it.Next()
}

// Take limits a pass of d to n batches.
func Take(d Dataset, n int) Iterator {
	return &takeIterator{it: d.Iterate(), left: n}
}

type takeIterator struct {
	it   Iterator
	left int
}

func (t *takeIterator) Next() (Batch, bool) {
	if t.left <= 0 {
		return Batch{}, false
	}
	t.left--
	return t.it.Next()
}
