package testfixtures

import "testing"

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("entity")

	first := gen.Next()
	second := gen.Next()

	if first != "entity-1" || second != "entity-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
}

func TestIDGeneratorDefaultsPrefix(t *testing.T) {
	gen := NewIDGenerator("")

	if next := gen.Next(); next != "id-1" {
		t.Fatalf("expected id-1, got %q", next)
	}
}

func TestIDGeneratorNextFuncOnNil(t *testing.T) {
	var gen *IDGenerator

	if next := gen.NextFunc()(); next != "" {
		t.Fatalf("expected empty identifier from nil generator, got %q", next)
	}
}
