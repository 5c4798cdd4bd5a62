package datasets

import "image"
import _ "image/png"
import "os"

import "github.com/pkg/errors"

import "github.com/neurlang/recognizer/parallel"

// Loader turns an image path into pixels of a fixed geometry.
type Loader interface {
	Load(path string) ([]float64, error)
	Geometry() (h, w, c int)
}

// Encoder turns a label into token ids.
type Encoder interface {
	Encode(label string) ([]int, error)
}

// PNGLoader reads images from disk as grayscale, resized to Height x Width
// by nearest neighbour. Pixels are scaled to [0, 1].
type PNGLoader struct {
	Height int
	Width  int
}

func (l PNGLoader) Geometry() (h, w, c int) {
	return l.Height, l.Width, 1
}

func (l PNGLoader) Load(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return Grayscale(img, l.Height, l.Width), nil
}

// Grayscale samples img into an h x w grid of luminance values in [0, 1].
func Grayscale(img image.Image, h, w int) []float64 {
	bounds := img.Bounds()
	var o = make([]float64, h*w)
	for y := 0; y < h; y++ {
		sy := bounds.Min.Y + y*bounds.Dy()/h
		for x := 0; x < w; x++ {
			sx := bounds.Min.X + x*bounds.Dx()/w
			r, g, b, _ := img.At(sx, sy).RGBA()
			o[y*w+x] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 0xffff
		}
	}
	return o
}

// Build loads the samples at idx into an in-memory dataset of batchSize batches.
func Build(loader Loader, enc Encoder, paths, labels []string, idx []int, batchSize int) (*Samples, error) {
	if len(paths) != len(labels) {
		return nil, errors.Wrapf(ErrShapeMismatch, "%d paths with %d labels", len(paths), len(labels))
	}
	var images = make([][]float64, len(idx))
	var tokens = make([][]int, len(idx))
	err := parallel.ForEachErr(len(idx), 0, func(j int) (err error) {
		i := idx[j]
		if i < 0 || i >= len(paths) {
			return errors.Errorf("sample index %d outside %d samples", i, len(paths))
		}
		if images[j], err = loader.Load(paths[i]); err != nil {
			return err
		}
		tokens[j], err = enc.Encode(labels[i])
		return err
	})
	if err != nil {
		return nil, err
	}
	h, w, c := loader.Geometry()
	return NewSamples(images, tokens, h, w, c, batchSize)
}
