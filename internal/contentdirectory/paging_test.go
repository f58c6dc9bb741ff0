package contentdirectory_test

import (
	"testing"

	"github.com/hearthcast/hearthcast/internal/contentdirectory"
)

func TestParseWindowDefaults(t *testing.T) {
	w := contentdirectory.ParseWindow("", "")
	if w.Start != 0 || w.Limit != nil {
		t.Fatalf("empty values must mean start-of-list unbounded, got %+v", w)
	}

	w = contentdirectory.ParseWindow("0", "0")
	if w.Start != 0 || w.Limit != nil {
		t.Fatalf("zero wire values must mean start-of-list unbounded, got %+v", w)
	}

	w = contentdirectory.ParseWindow("junk", "-3")
	if w.Start != 0 || w.Limit != nil {
		t.Fatalf("unparseable values must fall back to defaults, got %+v", w)
	}
}

func TestParseWindowExplicit(t *testing.T) {
	w := contentdirectory.ParseWindow("5", "10")
	if w.Start != 5 {
		t.Fatalf("start = %d, want 5", w.Start)
	}
	if w.Limit == nil || *w.Limit != 10 {
		t.Fatalf("limit = %v, want 10", w.Limit)
	}
}

func TestCountWindow(t *testing.T) {
	w := contentdirectory.CountWindow()
	if w.Limit == nil || *w.Limit != 0 {
		t.Fatalf("count window must carry a zero limit, got %+v", w)
	}
	lo, hi := w.Slice(7)
	if lo != 0 || hi != 0 {
		t.Fatalf("count window slice = [%d,%d), want empty", lo, hi)
	}
}

func TestWindowSlice(t *testing.T) {
	limit := int64(2)
	w := contentdirectory.Window{Start: 1, Limit: &limit}
	lo, hi := w.Slice(5)
	if lo != 1 || hi != 3 {
		t.Fatalf("slice = [%d,%d), want [1,3)", lo, hi)
	}

	lo, hi = w.Slice(2)
	if lo != 1 || hi != 2 {
		t.Fatalf("clamped slice = [%d,%d), want [1,2)", lo, hi)
	}

	w = contentdirectory.Window{Start: 9}
	lo, hi = w.Slice(4)
	if lo != 4 || hi != 4 {
		t.Fatalf("out-of-range start slice = [%d,%d), want empty", lo, hi)
	}
}
