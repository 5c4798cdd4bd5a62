// Package inference implements the inference stage of the recognizer
package inference

import "github.com/neurlang/recognizer/net/encdec"

type Model interface {
	Predict(images [][]float64, h, w, c int, mode encdec.Mode, withAttention bool) (encdec.Prediction, error)
}

// Decoder turns token ids back into text.
type Decoder interface {
	Decode(ids []int) string
}

// Result is the reading of one image.
type Result struct {
	Text   string
	Tokens []int
	Peaks  []int // most attended location per decoding step, when attention was requested
}

// Recognize reads a batch of images, stopping once every sequence ended.
func Recognize(m Model, dec Decoder, images [][]float64, h, w, c int, withAttention bool) ([]Result, error) {
	p, err := m.Predict(images, h, w, c, encdec.EarlyStop, withAttention)
	if err != nil {
		return nil, err
	}
	var o = make([]Result, len(p.Tokens))
	for i, row := range p.Tokens {
		o[i] = Result{Text: dec.Decode(row), Tokens: row}
		if withAttention && i < len(p.Attention) {
			o[i].Peaks = Peaks(p.Attention[i])
		}
	}
	return o, nil
}

// Peaks returns the index of the largest weight of every step.
func Peaks(attention [][]float64) []int {
	var o = make([]int, len(attention))
	for s, weights := range attention {
		for l, w := range weights {
			if w > weights[o[s]] {
				o[s] = l
			}
		}
	}
	return o
}
