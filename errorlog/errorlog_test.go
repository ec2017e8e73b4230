package errorlog

import "testing"

func TestLoggerEvictsOldest(t *testing.T) {
	l := New(3)
	l.Log("ERROR", "fetcher", "one", "")
	l.Log("ERROR", "fetcher", "two", "")
	l.Log("ERROR", "fetcher", "three", "")
	l.Log("ERROR", "fetcher", "four", "")

	got := l.Recent()
	if len(got) != 3 {
		t.Fatalf("expected 3 logs after eviction, got %d", len(got))
	}
	if got[0].Message != "four" {
		t.Fatalf("expected latest-first ordering, got %q first", got[0].Message)
	}
	if got[2].Message != "two" {
		t.Fatalf("expected oldest entry to be evicted, last is %q", got[2].Message)
	}
}

func TestLoggerClear(t *testing.T) {
	l := New(10)
	l.Log("WARN", "store", "something", "detail")
	l.Clear()
	if len(l.Recent()) != 0 {
		t.Fatalf("expected no logs after Clear")
	}
}
