package datapool_test

import (
	"testing"

	"github.com/jorgicor/bas55/internal/datapool"
)

func TestReadAdvancesInOrder(t *testing.T) {
	p := datapool.New()
	p.Add(1, datapool.Unquoted)
	p.Add(2, datapool.Quoted)
	p.Add(3, datapool.Unquoted)

	idx, q, ok := p.Read()
	if !ok || idx != 1 || q != datapool.Unquoted {
		t.Fatalf("first Read = (%d, %v, %v)", idx, q, ok)
	}

	idx, q, ok = p.Read()
	if !ok || idx != 2 || q != datapool.Quoted {
		t.Fatalf("second Read = (%d, %v, %v)", idx, q, ok)
	}
}

func TestReadExhaustedReturnsNotOK(t *testing.T) {
	p := datapool.New()
	p.Add(1, datapool.Unquoted)

	if _, _, ok := p.Read(); !ok {
		t.Fatal("expected the first Read to succeed")
	}
	if _, _, ok := p.Read(); ok {
		t.Fatal("expected Read to report exhaustion")
	}
}

func TestRestoreRewindsCursor(t *testing.T) {
	p := datapool.New()
	p.Add(5, datapool.Unquoted)
	p.Add(6, datapool.Unquoted)

	p.Read()
	p.Read()
	p.Restore()

	idx, _, ok := p.Read()
	if !ok || idx != 5 {
		t.Fatalf("after Restore, Read = (%d, %v), want (5, true)", idx, ok)
	}
}

func TestLenCountsAllAddedData(t *testing.T) {
	p := datapool.New()
	if p.Len() != 0 {
		t.Fatalf("Len() = %d on a new pool, want 0", p.Len())
	}
	p.Add(1, datapool.Unquoted)
	p.Add(2, datapool.Unquoted)
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
}
