// Package vocab defines the token vocabulary contract of the recognizer and
// a character vocabulary implementing it.
package vocab

import "github.com/pkg/errors"

// ErrConfiguration marks a malformed vocabulary or model configuration.
var ErrConfiguration = errors.New("configuration error")

// Padding is the token id of padding. Finished sequences emit only padding.
const Padding = 0

// Handler supplies the token ids and limits the sequence model works with.
// Implementations are read-only once constructed.
type Handler interface {

	// StartToken is the id written at position 0 of every sequence.
	StartToken() int

	// EndToken is the id terminating a sequence.
	EndToken() int

	// MaxLength is the number of positions of every sequence, including the start token.
	MaxLength() int

	// TokenMask marks forbidden vocabulary positions, one entry per token id.
	TokenMask() []bool

	// Size is the vocabulary size.
	Size() int
}

// Validate checks the invariants every Handler must hold.
func Validate(h Handler) error {
	if h == nil {
		return errors.Wrap(ErrConfiguration, "no vocabulary")
	}
	if h.MaxLength() < 2 {
		return errors.Wrapf(ErrConfiguration, "max length %d < 2", h.MaxLength())
	}
	n := h.Size()
	if h.StartToken() < 0 || h.StartToken() >= n {
		return errors.Wrapf(ErrConfiguration, "start token %d outside vocabulary of %d", h.StartToken(), n)
	}
	if h.EndToken() < 0 || h.EndToken() >= n {
		return errors.Wrapf(ErrConfiguration, "end token %d outside vocabulary of %d", h.EndToken(), n)
	}
	if h.StartToken() == h.EndToken() {
		return errors.Wrapf(ErrConfiguration, "start and end token are both %d", h.EndToken())
	}
	if len(h.TokenMask()) != n {
		return errors.Wrapf(ErrConfiguration, "token mask of %d for vocabulary of %d", len(h.TokenMask()), n)
	}
	return nil
}
