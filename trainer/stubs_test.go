package trainer

import "math/rand"

import "github.com/neurlang/recognizer/datasets"
import "github.com/neurlang/recognizer/layer"
import "github.com/neurlang/recognizer/net/encdec"
import "github.com/neurlang/recognizer/tensor"
import "github.com/neurlang/recognizer/vocab"

type stubEncoder struct{}

func (stubEncoder) Lay(*rand.Rand) layer.Encoder { return stubEncoder{} }

func (stubEncoder) Encode(images [][]float64, h, w, c int) (layer.Context, error) {
	return layer.Context{Features: []*tensor.Tensor{tensor.Zeros(len(images), 1)}}, nil
}

func (stubEncoder) Params() []*tensor.Tensor { return nil }

// biasDecoder scores every token by a trainable bias, whatever the input.
type biasDecoder []float64

type biasInstance struct {
	bias *tensor.Tensor
}

func (d biasDecoder) Lay(*rand.Rand) layer.Decoder {
	return &biasInstance{bias: tensor.New(1, len(d), append([]float64(nil), d...))}
}

func (s *biasInstance) Step(tokens []int, ctx layer.Context, hidden *tensor.Tensor) (logits, next, attention *tensor.Tensor, err error) {
	return tensor.AddRow(tensor.Zeros(len(tokens), s.bias.Cols()), s.bias), hidden, tensor.Zeros(len(tokens), 1), nil
}

func (s *biasInstance) Units(name string) (int, bool) { return 2, name == "rnn" }

func (s *biasInstance) Params() []*tensor.Tensor { return []*tensor.Tensor{s.bias} }

// charset has only pad 0, start 1 and end 2, so every sequence is [start, end].
func charset() *vocab.Charset {
	return vocab.MustNew(nil, 2)
}

// model favours the end token by strength.
func model(strength float64) *encdec.Model {
	return encdec.MustNew(stubEncoder{}, biasDecoder{0, 0, strength}, charset(), "rnn", nil, 1)
}

// samples is n images all labelled with the empty string, in batches of size.
func samples(n, size int) *datasets.Samples {
	h := charset()
	images := make([][]float64, n)
	tokens := make([][]int, n)
	for i := range images {
		images[i] = []float64{0}
		tokens[i], _ = h.Encode("")
	}
	s, err := datasets.NewSamples(images, tokens, 1, 1, 1, size)
	if err != nil {
		panic(err.Error())
	}
	return s
}

// counting counts the batches drawn from a dataset.
type counting struct {
	datasets.Dataset
	drawn *int
}

func (c counting) Iterate() datasets.Iterator {
	return countingIterator{c.Dataset.Iterate(), c.drawn}
}

type countingIterator struct {
	it    datasets.Iterator
	drawn *int
}

func (c countingIterator) Next() (datasets.Batch, bool) {
	b, ok := c.it.Next()
	if ok {
		*c.drawn++
	}
	return b, ok
}
