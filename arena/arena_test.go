package arena

import "testing"

func TestAllocTracksAndReset(t *testing.T) {
	a := New()
	for i := 0; i < chunkGranularity*2+3; i++ {
		Alloc(a, i)
	}
	if got := a.Len(); got != chunkGranularity*2+3 {
		t.Fatalf("Len() = %d, want %d", got, chunkGranularity*2+3)
	}
	a.Reset()
	if got := a.Len(); got != 0 {
		t.Fatalf("after Reset, Len() = %d, want 0", got)
	}
}

func TestAllocCopyIsIndependent(t *testing.T) {
	a := New()
	p := Alloc(a, 42)
	*p = 7
	q := Alloc(a, 42)
	if *q != 42 {
		t.Fatalf("q = %d, want 42", *q)
	}
}

func TestFreeClearsArena(t *testing.T) {
	a := New()
	Alloc(a, "x")
	a.Free()
	if a.Len() != 0 {
		t.Fatalf("Len() after Free = %d, want 0", a.Len())
	}
}
