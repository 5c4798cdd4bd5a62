package datasets

import "image"
import "image/color"
import "math"
import "image/png"
import "os"
import "path/filepath"
import "testing"

type fakeEncoder struct{}

func (fakeEncoder) Encode(label string) ([]int, error) {
	return []int{1, len(label) + 2, 2}, nil
}

func TestBuildFromPNG(t *testing.T) {
	dir := t.TempDir()
	var paths, labels []string
	for i, label := range []string{"a", "bb", "ccc"} {
		img := image.NewGray(image.Rect(0, 0, 8, 4))
		img.SetGray(i, 0, color.Gray{Y: 255})
		path := filepath.Join(dir, label+".png")
		f, err := os.Create(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, img); err != nil {
			t.Fatal(err)
		}
		f.Close()
		paths = append(paths, path)
		labels = append(labels, label)
	}
	s, err := Build(PNGLoader{Height: 2, Width: 4}, fakeEncoder{}, paths, labels, []int{2, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	it := s.Iterate()
	b, ok := it.Next()
	if !ok || b.Len() != 2 {
		t.Fatalf("got %d samples", b.Len())
	}
	if b.Tokens[0][1] != 5 || b.Tokens[1][1] != 3 {
		t.Errorf("tokens %v", b.Tokens)
	}
	if len(b.Images[0]) != 8 {
		t.Errorf("image of %d pixels", len(b.Images[0]))
	}
	if math.Abs(b.Images[1][0]-1) > 1e-9 {
		t.Errorf("white pixel reads %g", b.Images[1][0])
	}
}

func TestBuildMissingFile(t *testing.T) {
	_, err := Build(PNGLoader{Height: 2, Width: 2}, fakeEncoder{}, []string{"/nonexistent.png"}, []string{"x"}, []int{0}, 1)
	if err == nil {
		t.Errorf("missing file accepted")
	}
}
