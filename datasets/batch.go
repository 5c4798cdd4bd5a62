// Package datasets implements the recognizer batch and dataset types
package datasets

import "github.com/pkg/errors"

// ErrShapeMismatch marks images and tokens inconsistent with each other or the vocabulary.
var ErrShapeMismatch = errors.New("shape mismatch")

// Batch is a group of images with their token sequences.
// Images hold Height*Width*Channels pixels per row in HWC order.
type Batch struct {
	Images   [][]float64
	Tokens   [][]int
	Height   int
	Width    int
	Channels int
}

// Len is the batch size.
func (b Batch) Len() int {
	return len(b.Images)
}

// CheckImages verifies the image rows agree with the declared geometry.
func (b Batch) CheckImages() error {
	if len(b.Images) == 0 {
		return errors.Wrap(ErrShapeMismatch, "empty batch")
	}
	if b.Height <= 0 || b.Width <= 0 || b.Channels <= 0 {
		return errors.Wrapf(ErrShapeMismatch, "image geometry %dx%dx%d", b.Height, b.Width, b.Channels)
	}
	size := b.Height * b.Width * b.Channels
	for i, img := range b.Images {
		if len(img) != size {
			return errors.Wrapf(ErrShapeMismatch, "image %d has %d pixels, want %d", i, len(img), size)
		}
	}
	return nil
}

// Check verifies images and that every token row has maxLength ids in
// [0, size) starting with start.
func (b Batch) Check(maxLength, start, size int) error {
	if err := b.CheckImages(); err != nil {
		return err
	}
	if len(b.Tokens) != len(b.Images) {
		return errors.Wrapf(ErrShapeMismatch, "%d images with %d token rows", len(b.Images), len(b.Tokens))
	}
	for i, row := range b.Tokens {
		if len(row) != maxLength {
			return errors.Wrapf(ErrShapeMismatch, "token row %d has %d ids, want %d", i, len(row), maxLength)
		}
		if row[0] != start {
			return errors.Wrapf(ErrShapeMismatch, "token row %d starts with %d, want %d", i, row[0], start)
		}
		for j, id := range row {
			if id < 0 || id >= size {
				return errors.Wrapf(ErrShapeMismatch, "token row %d has id %d at %d outside vocabulary of %d", i, id, j, size)
			}
		}
	}
	return nil
}

// Column returns the ids at position i of every row.
func (b Batch) Column(i int) []int {
	o := make([]int, len(b.Tokens))
	for j, row := range b.Tokens {
		o[j] = row[i]
	}
	return o
}
