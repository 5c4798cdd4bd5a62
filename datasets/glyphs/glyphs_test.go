package glyphs

import "math/rand"
import "testing"

func TestRender(t *testing.T) {
	l := Loader{MaxChars: 3}
	img, err := l.Load(Prefix + "10")
	if err != nil {
		t.Fatal(err)
	}
	h, w, c := l.Geometry()
	if len(img) != h*w*c || w != 13 {
		t.Fatalf("%d pixels for %dx%dx%d", len(img), h, w, c)
	}
	// top row of '1' is ".#." starting at x=1
	if img[1*w+2] != 1 || img[1*w+1] != 0 {
		t.Errorf("glyph '1' misplaced")
	}
	// margin stays blank
	for x := 0; x < w; x++ {
		if img[x] != 0 {
			t.Errorf("margin pixel %d set", x)
		}
	}
}

func TestNoiseIsDeterministic(t *testing.T) {
	l := Loader{MaxChars: 4, Noise: 0.2}
	a, _ := l.Load(Prefix + "1234")
	b, _ := l.Load(Prefix + "1234")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("pixel %d differs", i)
		}
	}
}

func TestGenerate(t *testing.T) {
	paths, labels := Generate(50, 1, 4, rand.New(rand.NewSource(1)))
	if len(paths) != 50 || len(labels) != 50 {
		t.Fatalf("%d paths, %d labels", len(paths), len(labels))
	}
	for i, label := range labels {
		if len(label) < 1 || len(label) > 4 {
			t.Errorf("label %q", label)
		}
		if paths[i] != Prefix+label {
			t.Errorf("path %q for %q", paths[i], label)
		}
	}
}

func TestRejects(t *testing.T) {
	l := Loader{MaxChars: 2}
	for _, p := range []string{"123", Prefix + "123", Prefix + "a"} {
		if _, err := l.Load(p); err == nil {
			t.Errorf("%q accepted", p)
		}
	}
}
