package main

import "flag"
import "math/rand"
import "os"
import "path/filepath"
import "strings"
import "time"

import "github.com/google/uuid"
import "k8s.io/klog/v2"

import "github.com/neurlang/recognizer/datasets"
import "github.com/neurlang/recognizer/datasets/glyphs"
import "github.com/neurlang/recognizer/datasets/mnist"
import "github.com/neurlang/recognizer/device"
import "github.com/neurlang/recognizer/layer"
import "github.com/neurlang/recognizer/ledger"
import "github.com/neurlang/recognizer/net/encdec"
import "github.com/neurlang/recognizer/trainer"
import "github.com/neurlang/recognizer/vocab"

func fatal(err error, msg string, keysAndValues ...interface{}) {
	klog.ErrorS(err, msg, keysAndValues...)
	klog.FlushAndExit(klog.ExitFlushTimeout, 1)
}

// listPNG lists the PNG files of dir. A label is the file name without extension.
func listPNG(dir string) (paths, labels []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".png") {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
		labels = append(labels, strings.TrimSuffix(name, filepath.Ext(name)))
	}
	return paths, labels, nil
}

func main() {
	klog.InitFlags(nil)
	splits := flag.Int("splits", 5, "number of k-fold splits")
	seed := flag.Int64("seed", 42, "run seed, negative for an unseeded run")
	subclassed := flag.Bool("subclassed", false, "rebuild every fold's model from its configuration instead of cloning the architecture")
	epochs := flag.Int("epochs", 30, "maximum epochs per fold")
	batch := flag.Int("batch", 16, "batch size")
	patience := flag.Int("patience", 5, "epochs without improvement before stopping a fold, 0 disables")
	lr := flag.Float64("lr", 3e-3, "learning rate")
	optimizer := flag.String("optimizer", "adam", "optimizer: adam or sgd")
	loss := flag.String("loss", "sparse", "loss: sparse or masked")
	backbone := flag.String("backbone", "patch", "backbone: "+strings.Join(layer.Backbones(), ", "))
	samples := flag.Int("samples", 200, "synthetic samples when -dir is empty")
	maxChars := flag.Int("maxchars", 4, "longest synthetic string")
	noise := flag.Float64("noise", 0.02, "synthetic glyph pixel noise")
	useMnist := flag.Bool("mnist", false, "render strings of MNIST digits instead of glyphs")
	mnistDir := flag.String("mnistdir", "", "directory holding the gzipped MNIST training files")
	dir := flag.String("dir", "", "directory of PNG images named by their label")
	height := flag.Int("height", 32, "PNG image height after resizing")
	width := flag.Int("width", 128, "PNG image width after resizing")
	repeat := flag.Bool("repeat", false, "repeat datasets endlessly, stepping one pass per epoch")
	trainMetrics := flag.Bool("trainmetrics", false, "also report edit distance of training batches")
	threads := flag.Int("threads", 0, "worker threads, 0 for every logical core")
	db := flag.String("db", "", "SQLite ledger to record the run in")
	cpuprofile := flag.String("cpuprofile", "", "write a CPU profile")
	flag.Parse()
	defer klog.Flush()

	if *cpuprofile != "" {
		defer profile(*cpuprofile)()
	}
	if *threads > 0 {
		device.SetThreads(*threads)
	}
	info := device.Probe()
	klog.InfoS("Device", "cpu", info.Brand, "physical", info.Physical, "logical", info.Logical,
		"avx2", info.AVX2, "avx512", info.AVX512, "gpus", info.GPUs, "threads", device.Threads())

	var base = time.Now().UnixNano()
	var runSeed *int64
	if *seed >= 0 {
		base = *seed
		runSeed = seed
	}

	var loader datasets.Loader
	var paths, labels []string
	if *dir != "" {
		var err error
		if paths, labels, err = listPNG(*dir); err != nil {
			fatal(err, "Cannot list images", "dir", *dir)
		}
		loader = datasets.PNGLoader{Height: *height, Width: *width}
	} else if *useMnist {
		set, err := mnist.Open(*mnistDir)
		if err != nil {
			fatal(err, "Cannot load MNIST")
		}
		paths, labels = mnist.Generate(set, *samples, 1, *maxChars, rand.New(rand.NewSource(base)))
		loader = mnist.Loader{Set: set, MaxChars: *maxChars}
	} else {
		paths, labels = glyphs.Generate(*samples, 1, *maxChars, rand.New(rand.NewSource(base)))
		loader = glyphs.Loader{MaxChars: *maxChars, Noise: *noise}
	}
	klog.InfoS("Samples", "count", len(paths))

	charset, err := vocab.New(labels, 0)
	if err != nil {
		fatal(err, "Cannot build vocabulary")
	}
	h, w, c := loader.Geometry()
	spec := encdec.DefaultSpec(*backbone, charset, h, w, c)
	spec.Loss = *loss
	proto, err := encdec.FromSpec(spec, charset, base)
	if err != nil {
		fatal(err, "Cannot build model", "backbone", *backbone)
	}

	cfg := trainer.DefaultFitConfig()
	cfg.Epochs = *epochs
	cfg.BatchSize = *batch
	cfg.Patience = *patience
	cfg.Repeat = *repeat
	cfg.TrainMetrics = *trainMetrics
	cfg.HyperParameters.LearningRate = *lr
	cfg.HyperParameters.Optimizer = *optimizer
	kfold := trainer.KFold{Splits: *splits, Seed: runSeed, Subclassed: *subclassed}

	var l *ledger.Ledger
	var run uuid.UUID
	if *db != "" {
		if l, err = ledger.Open(*db); err != nil {
			fatal(err, "Cannot open ledger", "path", *db)
		}
		defer l.Close()
		run, err = l.BeginRun(struct {
			KFold trainer.KFold
			Fit   trainer.FitConfig
			Model encdec.Spec
		}{kfold, cfg, spec})
		if err != nil {
			fatal(err, "Cannot record run")
		}
		klog.InfoS("Run", "id", run, "ledger", *db)
	}

	folds, err := kfold.Run(proto, paths, labels, trainer.NewFoldFunc(loader, charset, cfg, base))
	if err != nil {
		fatal(err, "K-fold training failed")
	}
	if l != nil {
		n, _ := folds.Len()
		for i := 0; i < n; i++ {
			if err := l.RecordFold(run, i, folds.Fold(i)); err != nil {
				fatal(err, "Cannot record fold", "fold", i+1)
			}
		}
	}
	best, err := trainer.BestFold(folds)
	if err != nil {
		fatal(err, "Cannot select a fold")
	}
	klog.InfoS("Best fold", "fold", best.Fold+1, "model", best.Model.Name(), "loss", best.Loss,
		"best_epoch", best.BestEpoch+1, "edit_distance", best.EditDistance[best.BestEpoch])
	if l != nil {
		if err := l.RecordSelection(run, best); err != nil {
			fatal(err, "Cannot record selection")
		}
	}
}
