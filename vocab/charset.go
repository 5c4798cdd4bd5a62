package vocab

import "sort"
import "strings"

import "github.com/pkg/errors"

const (
	startToken = 1
	endToken   = 2
	firstChar  = 3
)

// Charset maps the characters of labels to token ids. Id 0 is padding,
// 1 is start, 2 is end and characters follow in sorted order.
type Charset struct {
	chars  []rune
	ids    map[rune]int
	maxLen int
	mask   []bool
}

// New builds a charset over every character of labels. maxLength counts the
// start and end tokens; 0 sizes it to the longest label.
func New(labels []string, maxLength int) (*Charset, error) {
	var set = make(map[rune]struct{})
	var longest int
	for _, l := range labels {
		var n int
		for _, r := range l {
			set[r] = struct{}{}
			n++
		}
		if n > longest {
			longest = n
		}
	}
	if maxLength == 0 {
		maxLength = longest + 2
	}
	if maxLength < 2 {
		return nil, errors.Wrapf(ErrConfiguration, "max length %d < 2", maxLength)
	}
	if longest+2 > maxLength {
		return nil, errors.Wrapf(ErrConfiguration, "label of %d characters does not fit max length %d", longest, maxLength)
	}
	c := &Charset{ids: make(map[rune]int), maxLen: maxLength}
	for r := range set {
		c.chars = append(c.chars, r)
	}
	sort.Slice(c.chars, func(i, j int) bool { return c.chars[i] < c.chars[j] })
	for i, r := range c.chars {
		c.ids[r] = firstChar + i
	}
	c.mask = make([]bool, firstChar+len(c.chars))
	c.mask[Padding] = true
	c.mask[startToken] = true
	return c, nil
}

// MustNew is New which panics on error.
func MustNew(labels []string, maxLength int) *Charset {
	c, err := New(labels, maxLength)
	if err != nil {
		panic(err.Error())
	}
	return c
}

func (c *Charset) StartToken() int { return startToken }
func (c *Charset) EndToken() int   { return endToken }
func (c *Charset) MaxLength() int  { return c.maxLen }
func (c *Charset) Size() int       { return len(c.mask) }

// TokenMask forbids padding and start. The slice must not be modified.
func (c *Charset) TokenMask() []bool { return c.mask }

// Encode turns a label into MaxLength ids: start, characters, end, padding.
func (c *Charset) Encode(label string) ([]int, error) {
	var o = make([]int, c.maxLen)
	o[0] = startToken
	var i = 1
	for _, r := range label {
		id, ok := c.ids[r]
		if !ok {
			return nil, errors.Wrapf(ErrConfiguration, "character %q of %q not in vocabulary", r, label)
		}
		if i >= c.maxLen-1 {
			return nil, errors.Wrapf(ErrConfiguration, "label %q does not fit max length %d", label, c.maxLen)
		}
		o[i] = id
		i++
	}
	o[i] = endToken
	return o, nil
}

// Decode turns ids back into text, stopping at end or padding. Start tokens are skipped.
func (c *Charset) Decode(ids []int) string {
	var b strings.Builder
	for _, id := range ids {
		switch {
		case id == startToken:
			continue
		case id == endToken || id == Padding:
			return b.String()
		case id-firstChar >= 0 && id-firstChar < len(c.chars):
			b.WriteRune(c.chars[id-firstChar])
		}
	}
	return b.String()
}
