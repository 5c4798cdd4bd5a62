package glyphs

import "fmt"
import "math/rand"
import "strings"

import "github.com/pkg/errors"

import "github.com/neurlang/recognizer/hash"

// Prefix starts every glyph path.
const Prefix = "glyph:"

// Height of a rendered image, one pixel margin around the 5 pixel font.
const Height = 7

const (
	glyphWidth  = 3
	glyphHeight = 5
	advance     = glyphWidth + 1
)

var font = map[rune][glyphHeight]string{
	'0': {"###", "#.#", "#.#", "#.#", "###"},
	'1': {".#.", "##.", ".#.", ".#.", "###"},
	'2': {"###", "..#", "###", "#..", "###"},
	'3': {"###", "..#", ".##", "..#", "###"},
	'4': {"#.#", "#.#", "###", "..#", "..#"},
	'5': {"###", "#..", "###", "..#", "###"},
	'6': {"###", "#..", "###", "#.#", "###"},
	'7': {"###", "..#", ".#.", ".#.", ".#."},
	'8': {"###", "#.#", "###", "#.#", "###"},
	'9': {"###", "#.#", "###", "..#", "###"},
}

// Loader renders glyph paths. Images are wide enough for MaxChars digits.
// Noise flips pixels with the given probability, seeded by the path.
type Loader struct {
	MaxChars int
	Noise    float64
}

// Width of a rendered image.
func (l Loader) Width() int {
	return l.MaxChars*advance + 1
}

func (l Loader) Geometry() (h, w, c int) {
	return Height, l.Width(), 1
}

// Load renders the digits after Prefix.
func (l Loader) Load(path string) ([]float64, error) {
	if !strings.HasPrefix(path, Prefix) {
		return nil, errors.Errorf("%q is not a glyph path", path)
	}
	text := path[len(Prefix):]
	if len(text) > l.MaxChars {
		return nil, errors.Errorf("%q has more than %d digits", text, l.MaxChars)
	}
	w := l.Width()
	var o = make([]float64, Height*w)
	for i, r := range text {
		g, ok := font[r]
		if !ok {
			return nil, errors.Errorf("no glyph for %q", r)
		}
		x0 := 1 + i*advance
		for y, line := range g {
			for x, p := range line {
				if p == '#' {
					o[(y+1)*w+x0+x] = 1
				}
			}
		}
	}
	if l.Noise > 0 {
		var seed uint32
		for _, b := range []byte(path) {
			seed = hash.Hash(seed^uint32(b), uint32(len(path)), 1<<31)
		}
		rng := rand.New(rand.NewSource(int64(seed)))
		for i := range o {
			if rng.Float64() < l.Noise {
				o[i] = 1 - o[i]
			}
		}
	}
	return o, nil
}

// Generate draws n random digit strings of minLen..maxLen digits.
func Generate(n, minLen, maxLen int, rng *rand.Rand) (paths, labels []string) {
	for i := 0; i < n; i++ {
		length := minLen
		if maxLen > minLen {
			length += rng.Intn(maxLen - minLen + 1)
		}
		var b strings.Builder
		for j := 0; j < length; j++ {
			fmt.Fprint(&b, rng.Intn(10))
		}
		labels = append(labels, b.String())
		paths = append(paths, Prefix+b.String())
	}
	return
}
