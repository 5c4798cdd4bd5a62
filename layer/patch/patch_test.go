package patch

import "math/rand"
import "testing"

import "github.com/neurlang/recognizer/layer"

func TestStripsCoverImage(t *testing.T) {
	spec := MustNew(layer.EncoderConfig{Height: 2, Width: 5, Channels: 1, PatchWidth: 2, Units: 3})
	if spec.Locations() != 3 {
		t.Fatalf("%d locations, want 3", spec.Locations())
	}
	enc := spec.Lay(rand.New(rand.NewSource(1))).(*Patch)
	img := []float64{
		1, 2, 3, 4, 5,
		6, 7, 8, 9, 10,
	}
	strips := enc.strips([][]float64{img})
	want := [][]float64{{1, 2, 6, 7}, {3, 4, 8, 9}, {5, 0, 10, 0}}
	for l, s := range strips {
		for i, v := range s.Row(0) {
			if v != want[l][i] {
				t.Errorf("strip %d = %v, want %v", l, s.Row(0), want[l])
				break
			}
		}
	}
}

func TestRegisteredBackbones(t *testing.T) {
	cfg := layer.EncoderConfig{Height: 7, Width: 13, Channels: 1, PatchWidth: 4, Units: 8, Hidden: 6}
	for _, tc := range []struct {
		name   string
		hidden bool
	}{{"patch", false}, {"patch_hidden", true}} {
		spec, err := layer.Lookup(tc.name, cfg)
		if err != nil {
			t.Fatal(err)
		}
		enc := spec.Lay(rand.New(rand.NewSource(2)))
		ctx, err := enc.Encode([][]float64{make([]float64, 91), make([]float64, 91)}, 7, 13, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(ctx.Features) != 4 || ctx.Features[0].Rows() != 2 || ctx.Features[0].Cols() != 8 {
			t.Errorf("%s: features %d x %v", tc.name, len(ctx.Features), ctx.Features[0])
		}
		if (ctx.Hidden != nil) != tc.hidden {
			t.Errorf("%s: hidden %v", tc.name, ctx.Hidden)
		}
		if ctx.Hidden != nil && ctx.Hidden.Cols() != 6 {
			t.Errorf("%s: hidden width %d", tc.name, ctx.Hidden.Cols())
		}
	}
	if _, err := layer.Lookup("resnet", cfg); err == nil {
		t.Errorf("unknown backbone accepted")
	}
}

func TestEncodeRejectsGeometry(t *testing.T) {
	enc := MustNew(layer.EncoderConfig{Height: 2, Width: 4, Channels: 1, PatchWidth: 2, Units: 3}).Lay(rand.New(rand.NewSource(1)))
	if _, err := enc.Encode([][]float64{make([]float64, 9)}, 3, 3, 1); err == nil {
		t.Errorf("wrong geometry accepted")
	}
}
