package domain

import "testing"

func TestStringList_ValueAndScan(t *testing.T) {
	v, err := StringList{"a", "b"}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != `["a","b"]` {
		t.Fatalf("unexpected serialized form: %v", v)
	}

	var l StringList
	if err := l.Scan(v); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(l) != 2 || l[0] != "a" || l[1] != "b" {
		t.Fatalf("roundtrip mismatch: %v", l)
	}
}

func TestStringList_EmptyValue(t *testing.T) {
	v, err := StringList(nil).Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != "[]" {
		t.Fatalf("expected empty JSON array, got %v", v)
	}
}

func TestStringList_ScanNilAndBytes(t *testing.T) {
	var l StringList
	if err := l.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if l != nil {
		t.Fatalf("expected nil list, got %v", l)
	}

	if err := l.Scan([]byte(`["x"]`)); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if len(l) != 1 || l[0] != "x" {
		t.Fatalf("unexpected list: %v", l)
	}

	if err := l.Scan(42); err == nil {
		t.Fatal("expected error for unsupported source type")
	}
}
