// Package conv2d implements the convolution backbone: a filter bank of Height x
// Kernel windows slides along the image one column at a time and the filtered
// columns are averaged, PatchWidth at a time, into the locations the decoder attends over.
package conv2d

import "math/rand"

import "github.com/pkg/errors"

import "github.com/neurlang/recognizer/datasets"
import "github.com/neurlang/recognizer/layer"
import "github.com/neurlang/recognizer/layer/full"
import "github.com/neurlang/recognizer/parallel"
import "github.com/neurlang/recognizer/tensor"
import "github.com/neurlang/recognizer/vocab"

// Kernel is the window width in columns.
const Kernel = 3

func init() {
	layer.Register("conv", func(cfg layer.EncoderConfig) (layer.EncoderSpec, error) {
		cfg.Hidden = 0
		return New(cfg)
	})
}

type Conv2DLayer struct {
	cfg       layer.EncoderConfig
	locations int
	filter    *full.FullLayer
}

type Conv2D struct {
	spec     *Conv2DLayer
	filter   *full.Full
	position []*tensor.Tensor
}

// MustNew creates a new convolution backbone spec
func MustNew(cfg layer.EncoderConfig) *Conv2DLayer {
	o, err := New(cfg)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new convolution backbone spec
func New(cfg layer.EncoderConfig) (o *Conv2DLayer, err error) {
	if cfg.Height <= 0 || cfg.Width < Kernel || cfg.Channels <= 0 {
		return nil, errors.Wrapf(vocab.ErrConfiguration, "conv backbone: image geometry %dx%dx%d", cfg.Height, cfg.Width, cfg.Channels)
	}
	if cfg.PatchWidth <= 0 || cfg.PatchWidth > cfg.Width {
		return nil, errors.Wrapf(vocab.ErrConfiguration, "conv backbone: pool width %d for image width %d", cfg.PatchWidth, cfg.Width)
	}
	o = &Conv2DLayer{cfg: cfg, locations: (cfg.Width + cfg.PatchWidth - 1) / cfg.PatchWidth}
	if o.filter, err = full.New(cfg.Height*Kernel*cfg.Channels, cfg.Units, full.Tanh); err != nil {
		return nil, err
	}
	return o, nil
}

// Locations is the number of pooled column groups.
func (i *Conv2DLayer) Locations() int { return i.locations }

// Lay creates the backbone with fresh weights
func (i *Conv2DLayer) Lay(rng *rand.Rand) layer.Encoder {
	o := &Conv2D{spec: i, filter: i.filter.Lay(rng)}
	for l := 0; l < i.locations; l++ {
		o.position = append(o.position, tensor.Param(1, i.cfg.Units, rng))
	}
	return o
}

// windows cuts every image into one centred window per column, zero outside the image.
func (f *Conv2D) windows(images [][]float64) []*tensor.Tensor {
	cfg := f.spec.cfg
	var o = make([]*tensor.Tensor, cfg.Width)
	for x := range o {
		o[x] = tensor.Zeros(len(images), cfg.Height*Kernel*cfg.Channels)
	}
	parallel.ForEach(len(images), 0, func(n int) {
		img := images[n]
		for x := range o {
			row := o[x].Row(n)
			for y := 0; y < cfg.Height; y++ {
				for k := 0; k < Kernel; k++ {
					sx := x + k - Kernel/2
					if sx < 0 || sx >= cfg.Width {
						continue
					}
					src := (y*cfg.Width + sx) * cfg.Channels
					dst := (y*Kernel + k) * cfg.Channels
					copy(row[dst:dst+cfg.Channels], img[src:src+cfg.Channels])
				}
			}
		}
	})
	return o
}

func (f *Conv2D) Encode(images [][]float64, h, w, c int) (layer.Context, error) {
	cfg := f.spec.cfg
	if h != cfg.Height || w != cfg.Width || c != cfg.Channels {
		return layer.Context{}, errors.Wrapf(datasets.ErrShapeMismatch, "conv backbone built for %dx%dx%d images, got %dx%dx%d",
			cfg.Height, cfg.Width, cfg.Channels, h, w, c)
	}
	var columns []*tensor.Tensor
	for _, win := range f.windows(images) {
		columns = append(columns, f.filter.Forward(win))
	}
	var ctx layer.Context
	for l := 0; l < f.spec.locations; l++ {
		group := columns[l*cfg.PatchWidth : min((l+1)*cfg.PatchWidth, len(columns))]
		pooled := group[0]
		for _, col := range group[1:] {
			pooled = tensor.Add(pooled, col)
		}
		pooled = tensor.Scale(pooled, 1/float64(len(group)))
		ctx.Features = append(ctx.Features, tensor.AddRow(pooled, f.position[l]))
	}
	return ctx, nil
}

func (f *Conv2D) Params() (o []*tensor.Tensor) {
	o = append(o, f.filter.Params()...)
	o = append(o, f.position...)
	return
}
