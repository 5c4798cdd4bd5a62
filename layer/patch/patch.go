// Package patch implements the strip backbone: the image is cut into vertical
// strips of PatchWidth columns, every strip is projected to a feature vector and
// tagged with a learned position. Text is read left to right, so the strips are
// the locations the decoder attends over.
package patch

import "math/rand"

import "github.com/pkg/errors"

import "github.com/neurlang/recognizer/datasets"
import "github.com/neurlang/recognizer/layer"
import "github.com/neurlang/recognizer/layer/full"
import "github.com/neurlang/recognizer/parallel"
import "github.com/neurlang/recognizer/tensor"
import "github.com/neurlang/recognizer/vocab"

func init() {
	layer.Register("patch", func(cfg layer.EncoderConfig) (layer.EncoderSpec, error) {
		cfg.Hidden = 0
		return New(cfg)
	})
	layer.Register("patch_hidden", func(cfg layer.EncoderConfig) (layer.EncoderSpec, error) {
		if cfg.Hidden <= 0 {
			return nil, errors.Wrap(vocab.ErrConfiguration, "patch_hidden needs a hidden width")
		}
		return New(cfg)
	})
}

// PatchLayer is the backbone architecture.
type PatchLayer struct {
	cfg       layer.EncoderConfig
	locations int
	project   *full.FullLayer
	hidden    *full.FullLayer
}

// Patch is the backbone with weights.
type Patch struct {
	spec     *PatchLayer
	project  *full.Full
	position []*tensor.Tensor
	hidden   *full.Full
}

// New creates a strip backbone. A positive cfg.Hidden also produces an initial decoder state.
func New(cfg layer.EncoderConfig) (*PatchLayer, error) {
	if cfg.Height <= 0 || cfg.Width <= 0 || cfg.Channels <= 0 {
		return nil, errors.Wrapf(vocab.ErrConfiguration, "image geometry %dx%dx%d", cfg.Height, cfg.Width, cfg.Channels)
	}
	if cfg.PatchWidth <= 0 || cfg.PatchWidth > cfg.Width {
		return nil, errors.Wrapf(vocab.ErrConfiguration, "patch width %d for image width %d", cfg.PatchWidth, cfg.Width)
	}
	project, err := full.New(cfg.Height*cfg.PatchWidth*cfg.Channels, cfg.Units, full.Tanh)
	if err != nil {
		return nil, err
	}
	o := &PatchLayer{
		cfg:       cfg,
		locations: (cfg.Width + cfg.PatchWidth - 1) / cfg.PatchWidth,
		project:   project,
	}
	if cfg.Hidden > 0 {
		if o.hidden, err = full.New(cfg.Units, cfg.Hidden, full.Tanh); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// MustNew is New which panics on error.
func MustNew(cfg layer.EncoderConfig) *PatchLayer {
	o, err := New(cfg)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// Locations is the number of strips.
func (p *PatchLayer) Locations() int { return p.locations }

func (p *PatchLayer) Lay(rng *rand.Rand) layer.Encoder {
	o := &Patch{spec: p, project: p.project.Lay(rng)}
	for i := 0; i < p.locations; i++ {
		o.position = append(o.position, tensor.Param(1, p.cfg.Units, rng))
	}
	if p.hidden != nil {
		o.hidden = p.hidden.Lay(rng)
	}
	return o
}

// strips cuts every image into per-location rows, zero padding the last strip.
func (p *Patch) strips(images [][]float64) []*tensor.Tensor {
	cfg := p.spec.cfg
	width := cfg.Height * cfg.PatchWidth * cfg.Channels
	var o = make([]*tensor.Tensor, p.spec.locations)
	for l := range o {
		o[l] = tensor.Zeros(len(images), width)
	}
	parallel.ForEach(len(images), 0, func(n int) {
		img := images[n]
		for l := range o {
			row := o[l].Row(n)
			for y := 0; y < cfg.Height; y++ {
				for dx := 0; dx < cfg.PatchWidth; dx++ {
					x := l*cfg.PatchWidth + dx
					if x >= cfg.Width {
						break
					}
					src := (y*cfg.Width + x) * cfg.Channels
					dst := (y*cfg.PatchWidth + dx) * cfg.Channels
					copy(row[dst:dst+cfg.Channels], img[src:src+cfg.Channels])
				}
			}
		}
	})
	return o
}

func (p *Patch) Encode(images [][]float64, h, w, c int) (layer.Context, error) {
	cfg := p.spec.cfg
	if h != cfg.Height || w != cfg.Width || c != cfg.Channels {
		return layer.Context{}, errors.Wrapf(datasets.ErrShapeMismatch, "backbone built for %dx%dx%d images, got %dx%dx%d",
			cfg.Height, cfg.Width, cfg.Channels, h, w, c)
	}
	var ctx layer.Context
	var sum *tensor.Tensor
	for l, strip := range p.strips(images) {
		f := tensor.AddRow(p.project.Forward(strip), p.position[l])
		ctx.Features = append(ctx.Features, f)
		if sum == nil {
			sum = f
		} else {
			sum = tensor.Add(sum, f)
		}
	}
	if p.hidden != nil {
		ctx.Hidden = p.hidden.Forward(tensor.Scale(sum, 1/float64(len(ctx.Features))))
	}
	return ctx, nil
}

func (p *Patch) Params() (o []*tensor.Tensor) {
	o = append(o, p.project.Params()...)
	o = append(o, p.position...)
	if p.hidden != nil {
		o = append(o, p.hidden.Params()...)
	}
	return
}
