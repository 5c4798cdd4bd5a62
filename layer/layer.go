package layer

import "math/rand"

import "github.com/neurlang/recognizer/tensor"

// Context is what an encoder hands to the decoder: one [N, D] feature tensor
// per spatial location, and optionally an initial [N, U] recurrent state.
type Context struct {
	Features []*tensor.Tensor
	Hidden   *tensor.Tensor
}

// Encoder maps a batch of images to a Context.
type Encoder interface {

	// Encode runs the backbone over N images of h x w x c pixels.
	Encode(images [][]float64, h, w, c int) (Context, error)

	// Params lists the trainable tensors.
	Params() []*tensor.Tensor
}

// Decoder performs one step of autoregressive decoding.
type Decoder interface {

	// Step consumes the previous tokens (one per row), the encoder context and the
	// recurrent state. It returns [N, V] logits, the next state and [N, P] attention weights.
	Step(tokens []int, ctx Context, hidden *tensor.Tensor) (logits, next, attention *tensor.Tensor, err error)

	// Units reports the width of the named recurrent layer.
	Units(name string) (int, bool)

	// Params lists the trainable tensors.
	Params() []*tensor.Tensor
}

// EncoderSpec is the architecture of an encoder. Lay creates a freshly initialised instance.
type EncoderSpec interface {
	Lay(rng *rand.Rand) Encoder
}

// DecoderSpec is the architecture of a decoder. Lay creates a freshly initialised instance.
type DecoderSpec interface {
	Lay(rng *rand.Rand) Decoder
}
