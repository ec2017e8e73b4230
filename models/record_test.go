package models

import "testing"

func TestRecordString(t *testing.T) {
	r := Record{ID: 1, Datetime: "2023-10-18T00:00:00Z", Value: 12.5}
	want := "Record: 1, 2023-10-18T00:00:00Z, 12.5"
	if got := r.String(); got != want {
		t.Fatalf("Record.String() = %q, want %q", got, want)
	}
}

func TestRecordString_WholeValue(t *testing.T) {
	r := Record{ID: 7, Datetime: "2023-10-18T06:00:00Z", Value: 10}
	want := "Record: 7, 2023-10-18T06:00:00Z, 10"
	if got := r.String(); got != want {
		t.Fatalf("Record.String() = %q, want %q", got, want)
	}
}
