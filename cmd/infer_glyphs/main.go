package main

import "flag"
import "fmt"
import "math/rand"
import "strings"

import "k8s.io/klog/v2"

import "github.com/neurlang/recognizer/datasets"
import "github.com/neurlang/recognizer/datasets/glyphs"
import "github.com/neurlang/recognizer/inference"
import "github.com/neurlang/recognizer/layer"
import "github.com/neurlang/recognizer/net/encdec"
import "github.com/neurlang/recognizer/trainer"
import "github.com/neurlang/recognizer/vocab"

// digits is the vocabulary of glyph strings up to maxChars long.
func digits(maxChars int) (*vocab.Charset, error) {
	return vocab.New(strings.Split("0123456789", ""), maxChars+2)
}

func indices(n int) []int {
	o := make([]int, n)
	for i := range o {
		o[i] = i
	}
	return o
}

func main() {
	klog.InitFlags(nil)
	epochs := flag.Int("epochs", 20, "training epochs")
	samples := flag.Int("samples", 400, "training samples")
	show := flag.Int("show", 10, "samples to read after training")
	maxChars := flag.Int("maxchars", 3, "longest glyph string")
	noise := flag.Float64("noise", 0.02, "pixel noise")
	seed := flag.Int64("seed", 1, "seed")
	backbone := flag.String("backbone", "patch_hidden", "backbone: "+strings.Join(layer.Backbones(), ", "))
	flag.Parse()
	defer klog.Flush()

	rng := rand.New(rand.NewSource(*seed))
	loader := glyphs.Loader{MaxChars: *maxChars, Noise: *noise}
	charset, err := digits(*maxChars)
	if err != nil {
		klog.ErrorS(err, "Cannot build vocabulary", "maxchars", *maxChars)
		klog.FlushAndExit(klog.ExitFlushTimeout, 1)
	}

	paths, labels := glyphs.Generate(*samples, 1, *maxChars, rng)
	split := len(paths) * 9 / 10
	train, err := datasets.Build(loader, charset, paths, labels, indices(split), 16)
	if err != nil {
		panic(err.Error())
	}
	valid, err := datasets.Build(loader, charset, paths[split:], labels[split:], indices(len(paths)-split), 16)
	if err != nil {
		panic(err.Error())
	}
	train.Shuffle(rng)

	h, w, c := loader.Geometry()
	m := encdec.MustFromSpec(encdec.DefaultSpec(*backbone, charset, h, w, c), charset, *seed)
	cfg := trainer.DefaultFitConfig()
	cfg.Epochs = *epochs
	history, best, edist, err := trainer.Fit(m, train, valid, cfg)
	if err != nil {
		panic(err.Error())
	}
	klog.InfoS("Trained", "epochs", history.Epochs(), "best_epoch", best+1, "edit_distance", edist[best])

	testPaths, testLabels := glyphs.Generate(*show, 1, *maxChars, rng)
	var images [][]float64
	for _, p := range testPaths {
		img, err := loader.Load(p)
		if err != nil {
			panic(err.Error())
		}
		images = append(images, img)
	}
	results, err := inference.Recognize(m, charset, images, h, w, c, true)
	if err != nil {
		panic(err.Error())
	}
	for i, r := range results {
		fmt.Printf("%-*s %-*s %v\n", *maxChars, testLabels[i], *maxChars, r.Text, r.Peaks)
	}
}
