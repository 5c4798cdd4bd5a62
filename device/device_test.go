package device

import "testing"

func TestThreads(t *testing.T) {
	SetThreads(3)
	if Threads() != 3 {
		t.Errorf("Threads() == %d, want 3", Threads())
	}
	SetThreads(0)
	if Threads() < 1 {
		t.Errorf("Threads() == %d after reset", Threads())
	}
}

func TestProbe(t *testing.T) {
	info := Probe()
	if info.Logical < 1 {
		t.Errorf("logical cores %d", info.Logical)
	}
	if info.AVX512 && !info.AVX2 {
		t.Logf("cpu reports avx512 without avx2: %s", info.Brand)
	}
}
