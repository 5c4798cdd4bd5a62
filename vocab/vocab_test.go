package vocab

import "testing"

import "github.com/pkg/errors"

func TestEncodeDecode(t *testing.T) {
	c := MustNew([]string{"301", "42"}, 6)
	if err := Validate(c); err != nil {
		t.Fatal(err)
	}
	ids, err := c.Encode("42")
	if err != nil {
		t.Fatal(err)
	}
	want := []int{1, 7, 5, 2, 0, 0}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("Encode(42) == %v, want %v", ids, want)
		}
	}
	if s := c.Decode(ids); s != "42" {
		t.Errorf("Decode == %q", s)
	}
}

func TestMaskForbidsPaddingAndStart(t *testing.T) {
	c := MustNew([]string{"ab"}, 0)
	mask := c.TokenMask()
	if !mask[Padding] || !mask[c.StartToken()] || mask[c.EndToken()] {
		t.Errorf("mask %v", mask)
	}
	if c.MaxLength() != 4 {
		t.Errorf("max length %d, want 4", c.MaxLength())
	}
}

func TestConfigurationErrors(t *testing.T) {
	testCases := []struct {
		name   string
		labels []string
		max    int
	}{
		{"too short", []string{"a"}, 1},
		{"label too long", []string{"abcd"}, 4},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.labels, tc.max)
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("err == %v, want configuration error", err)
			}
		})
	}
	c := MustNew([]string{"ab"}, 0)
	if _, err := c.Encode("ac"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("unknown character: err == %v", err)
	}
}

type brokenHandler struct{ *Charset }

func (brokenHandler) MaxLength() int { return 1 }

func TestValidate(t *testing.T) {
	if err := Validate(nil); !errors.Is(err, ErrConfiguration) {
		t.Errorf("nil handler: %v", err)
	}
	b := brokenHandler{MustNew([]string{"a"}, 0)}
	if err := Validate(b); !errors.Is(err, ErrConfiguration) {
		t.Errorf("max length 1: %v", err)
	}
}
