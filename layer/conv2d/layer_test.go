package conv2d

import "math/rand"
import "testing"

import "github.com/pkg/errors"

import "github.com/neurlang/recognizer/datasets"
import "github.com/neurlang/recognizer/layer"
import "github.com/neurlang/recognizer/tensor"

func TestWindowsAreCentred(t *testing.T) {
	enc := MustNew(layer.EncoderConfig{Height: 1, Width: 4, Channels: 1, PatchWidth: 2, Units: 2}).Lay(rand.New(rand.NewSource(1))).(*Conv2D)
	wins := enc.windows([][]float64{{1, 2, 3, 4}})
	want := [][]float64{{0, 1, 2}, {1, 2, 3}, {2, 3, 4}, {3, 4, 0}}
	for x, win := range wins {
		for i, v := range win.Row(0) {
			if v != want[x][i] {
				t.Errorf("window %d = %v, want %v", x, win.Row(0), want[x])
				break
			}
		}
	}
}

func TestConvBackbone(t *testing.T) {
	cfg := layer.EncoderConfig{Height: 7, Width: 13, Channels: 1, PatchWidth: 4, Units: 5, Hidden: 3}
	spec, err := layer.Lookup("conv", cfg)
	if err != nil {
		t.Fatal(err)
	}
	enc := spec.Lay(rand.New(rand.NewSource(2)))
	img := make([]float64, 91)
	for i := range img {
		img[i] = float64(i%3) / 2
	}
	ctx, err := enc.Encode([][]float64{img, img, img}, 7, 13, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(ctx.Features) != 4 || ctx.Features[3].Rows() != 3 || ctx.Features[3].Cols() != 5 || ctx.Hidden != nil {
		t.Fatalf("context %d locations, hidden %v", len(ctx.Features), ctx.Hidden)
	}
	var sum *tensor.Tensor
	for _, f := range ctx.Features {
		if sum == nil {
			sum = tensor.Sum(f)
		} else {
			sum = tensor.Add(sum, tensor.Sum(f))
		}
	}
	tensor.Backward(sum)
	for i, p := range enc.Params() {
		var nonzero bool
		for _, g := range p.Grad() {
			nonzero = nonzero || g != 0
		}
		if !nonzero {
			t.Errorf("parameter %d got no gradient", i)
		}
	}
	if _, err := enc.Encode([][]float64{img}, 13, 7, 1); !errors.Is(err, datasets.ErrShapeMismatch) {
		t.Errorf("err == %v", err)
	}
}
