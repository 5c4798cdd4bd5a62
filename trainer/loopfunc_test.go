package trainer

import "math/rand"
import "strings"
import "testing"

import "github.com/pkg/errors"

import "github.com/neurlang/recognizer/datasets"
import "github.com/neurlang/recognizer/datasets/glyphs"
import "github.com/neurlang/recognizer/net/encdec"
import "github.com/neurlang/recognizer/vocab"

// labelled is n one-pixel images whose token rows are all row.
func labelled(n, size int, row []int) *datasets.Samples {
	images := make([][]float64, n)
	tokens := make([][]int, n)
	for i := range images {
		images[i] = []float64{0}
		tokens[i] = row
	}
	s, err := datasets.NewSamples(images, tokens, 1, 1, 1, size)
	if err != nil {
		panic(err.Error())
	}
	return s
}

func fitConfig(epochs int) FitConfig {
	cfg := DefaultFitConfig()
	cfg.Epochs = epochs
	cfg.HyperParameters.LearningRate = 0.1
	return cfg
}

func TestFitImproves(t *testing.T) {
	m := model(0)
	history, best, edist, err := Fit(m, samples(4, 2), samples(4, 2), fitConfig(5))
	if err != nil {
		t.Fatal(err)
	}
	if history.Epochs() != 5 || len(history["val_loss"]) != 5 || len(edist) != 5 {
		t.Fatalf("history %v", history)
	}
	if best != 4 {
		t.Errorf("best epoch %d, want 4", best)
	}
	if history["val_loss"][4] >= history["val_loss"][0] {
		t.Errorf("validation loss %v did not fall", history["val_loss"])
	}
	if edist[best] != 0 {
		t.Errorf("edit distance %g at the best epoch", edist[best])
	}
}

func TestFitStopsEarly(t *testing.T) {
	// training pushes towards padding, validation wants the end token
	train := labelled(4, 2, []int{1, vocab.Padding})
	valid := labelled(4, 2, []int{1, 2})
	cfg := fitConfig(10)
	cfg.Patience = 2
	history, best, _, err := Fit(model(0), train, valid, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if best != 0 || history.Epochs() != 3 {
		t.Errorf("best epoch %d after %d epochs, want 0 after 3", best, history.Epochs())
	}
}

func TestFitInfiniteNeedsSteps(t *testing.T) {
	infinite := datasets.Repeat(samples(4, 2))
	if _, _, _, err := Fit(model(0), infinite, samples(4, 2), fitConfig(1)); !errors.Is(err, vocab.ErrConfiguration) {
		t.Errorf("err == %v", err)
	}
	cfg := fitConfig(2)
	cfg.StepsPerEpoch = 3
	var drawn int
	history, _, _, err := Fit(model(0), counting{infinite, &drawn}, samples(4, 2), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if drawn != 6 || history.Epochs() != 2 {
		t.Errorf("%d batches over %d epochs, want 6 over 2", drawn, history.Epochs())
	}
	if _, _, _, err := Fit(model(0), samples(4, 2), samples(4, 2), fitConfig(0)); !errors.Is(err, vocab.ErrConfiguration) {
		t.Errorf("no epochs: err == %v", err)
	}
}

func TestFitGlyphsReducesLoss(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	paths, labels := glyphs.Generate(16, 1, 2, rng)
	loader := glyphs.Loader{MaxChars: 2}
	h := vocab.MustNew(strings.Split("0123456789", ""), 4)
	idx := make([]int, len(paths))
	for i := range idx {
		idx[i] = i
	}
	data, err := datasets.Build(loader, h, paths, labels, idx, 4)
	if err != nil {
		t.Fatal(err)
	}
	height, width, channels := loader.Geometry()
	m := encdec.MustFromSpec(encdec.DefaultSpec("patch_hidden", h, height, width, channels), h, 3)
	cfg := DefaultFitConfig()
	cfg.Epochs = 8
	cfg.Patience = 0
	cfg.HyperParameters.LearningRate = 1e-2
	history, _, _, err := Fit(m, data, data, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if last := history["loss"][history.Epochs()-1]; last >= history["loss"][0] {
		t.Errorf("training loss went from %g to %g", history["loss"][0], last)
	}
}
