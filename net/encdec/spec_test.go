package encdec

import "reflect"
import "testing"

import "github.com/pkg/errors"

import "github.com/neurlang/recognizer/vocab"

func params(m *Model) (o [][]float64) {
	for _, p := range m.Params() {
		o = append(o, append([]float64(nil), p.Data()...))
	}
	return
}

func TestFromSpecBackbones(t *testing.T) {
	h := vocab.MustNew([]string{"0123456789"}, 0)
	for _, backbone := range []string{"patch", "patch_hidden", "conv"} {
		m, err := FromSpec(DefaultSpec(backbone, h, 4, 6, 1), h, 7)
		if err != nil {
			t.Fatalf("%s: %v", backbone, err)
		}
		p, err := m.Predict([][]float64{make([]float64, 24), make([]float64, 24)}, 4, 6, 1, FixedLength, true)
		if err != nil {
			t.Fatalf("%s: %v", backbone, err)
		}
		if len(p.Tokens) != 2 || len(p.Tokens[0]) != h.MaxLength() || p.Tokens[0][0] != h.StartToken() {
			t.Errorf("%s: tokens %v", backbone, p.Tokens)
		}
		if len(p.Attention[0]) != h.MaxLength()-1 || len(p.Attention[0][0]) != 3 {
			t.Errorf("%s: attention %d steps over %d locations", backbone, len(p.Attention[0]), len(p.Attention[0][0]))
		}
	}
}

func TestFromSpecRejects(t *testing.T) {
	h := vocab.MustNew([]string{"01"}, 0)
	unknown := DefaultSpec("resnet", h, 4, 6, 1)
	narrow := DefaultSpec("patch", h, 4, 6, 1)
	narrow.Decoder.Features = 3
	stateless := DefaultSpec("patch", h, 4, 6, 1)
	stateless.DecoderRNN = ""
	for name, s := range map[string]Spec{"unknown": unknown, "narrow": narrow, "stateless": stateless} {
		if _, err := FromSpec(s, h, 1); !errors.Is(err, vocab.ErrConfiguration) {
			t.Errorf("%s: err == %v", name, err)
		}
	}
}

func TestInstantiatorsReinitialise(t *testing.T) {
	h := vocab.MustNew([]string{"0123"}, 0)
	proto := MustFromSpec(DefaultSpec("patch", h, 4, 6, 1), h, 1)
	for _, inst := range []Instantiator{Architecture{proto}, Configuration{proto}} {
		a, err := inst.Instantiate(2)
		if err != nil {
			t.Fatalf("%T: %v", inst, err)
		}
		b, err := inst.Instantiate(2)
		if err != nil {
			t.Fatalf("%T: %v", inst, err)
		}
		if reflect.DeepEqual(params(a), params(proto)) {
			t.Errorf("%T copied the prototype weights", inst)
		}
		if !reflect.DeepEqual(params(a), params(b)) {
			t.Errorf("%T is not deterministic in the seed", inst)
		}
		if a.ID() == proto.ID() || a == proto {
			t.Errorf("%T returned the prototype", inst)
		}
		if _, ok := a.Spec(); !ok {
			t.Errorf("%T lost the spec", inst)
		}
	}
	bare := MustNew(stubEncoder{}, stubDecoder{bias: make([]float64, 5)}, charset(), "rnn", nil, 1)
	if _, err := (Configuration{bare}).Instantiate(1); !errors.Is(err, vocab.ErrConfiguration) {
		t.Errorf("spec-less configuration: err == %v", err)
	}
}
