package restclient

import (
	"reflect"
	"testing"
)

func TestJSONFormatRoundTrip(t *testing.T) {
	f := JSONFormat{}
	if f.MIMEType() != "application/json" {
		t.Fatalf("unexpected MIME type %q", f.MIMEType())
	}

	data, err := f.Serialize(map[string]any{"nid": 7, "title": "page"})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	got, err := f.Deserialize(data)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	want := map[string]any{"nid": float64(7), "title": "page"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch: %#v", got)
	}
}

func TestGobFormatRoundTrip(t *testing.T) {
	f := GobFormat{}
	if f.MIMEType() != "application/x-gob" {
		t.Fatalf("unexpected MIME type %q", f.MIMEType())
	}

	// Builtin types need no gob.Register call.
	data, err := f.Serialize("session opened")
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	got, err := f.Deserialize(data)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if got != "session opened" {
		t.Fatalf("round trip mismatch: %#v", got)
	}
}

func TestGobFormatRejectsGarbage(t *testing.T) {
	if _, err := (GobFormat{}).Deserialize([]byte("not a gob stream")); err == nil {
		t.Fatalf("expected a decode error")
	}
}
