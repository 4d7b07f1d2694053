package budget

import (
	"reflect"
	"testing"
)

func TestParseFieldsPreservesDocumentOrder(t *testing.T) {
	fields, err := ParseFields([]byte(`{"zebra":1,"apple":2,"mango":3}`))
	if err != nil {
		t.Fatalf("ParseFields returned error: %v", err)
	}
	want := []string{"zebra", "apple", "mango"}
	if got := fields.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected key order %v, got %v", want, got)
	}

	data, err := fields.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON returned error: %v", err)
	}
	if string(data) != `{"zebra":1,"apple":2,"mango":3}` {
		t.Fatalf("round trip changed the document: %s", data)
	}
}

func TestParseFieldsRejectsNonObjects(t *testing.T) {
	if _, err := ParseFields([]byte(`[1,2,3]`)); err == nil {
		t.Fatal("expected an error for a JSON array")
	}
	if _, err := ParseFields([]byte(`{"broken":`)); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}

func TestFieldsSetKeepsPositionOnOverwrite(t *testing.T) {
	fields := NewFields()
	fields.Set("first", 1)
	fields.Set("second", 2)
	fields.Set("first", 10)

	if got := fields.Keys(); !reflect.DeepEqual(got, []string{"first", "second"}) {
		t.Fatalf("overwrite moved the key: %v", got)
	}
	value, ok := fields.Get("first")
	if !ok || value != 10 {
		t.Fatalf("expected overwritten value 10, got %v (ok=%v)", value, ok)
	}
}

func TestEmptyFieldsMarshalToEmptyObject(t *testing.T) {
	data, err := NewFields().MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON returned error: %v", err)
	}
	if string(data) != "{}" {
		t.Fatalf("expected {}, got %s", data)
	}
}
