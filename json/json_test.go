package json

import (
	"bytes"
	stdjson "encoding/json"
	"strings"
	"testing"
)

type testEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message" default:"Request processed successfully."`
	Data    any    `json:"data,omitempty"`
}

func TestMarshalAppliesDefaults(t *testing.T) {
	env := &testEnvelope{Success: true}

	data, err := Marshal(env)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	if env.Message != "Request processed successfully." {
		t.Fatalf("expected default message to be applied, got %q", env.Message)
	}

	var decoded map[string]any
	if err := stdjson.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("encoded JSON should be valid, got error: %v", err)
	}
	if _, ok := decoded["data"]; ok {
		t.Fatalf("expected nil data to be omitted, got %s", data)
	}
}

func TestMarshalKeepsExplicitMessage(t *testing.T) {
	env := &testEnvelope{Message: "Created"}

	data, err := Marshal(env)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if !strings.Contains(string(data), `"message":"Created"`) {
		t.Fatalf("unexpected payload: %s", data)
	}
}

func TestMarshalNonStructValues(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  string
	}{
		{"map", map[string]any{"b": 1, "a": 2}, `{"a":2,"b":1}`},
		{"slice", []string{"x", "y"}, `["x","y"]`},
		{"empty slice", []any{}, `[]`},
		{"nil", nil, `null`},
		{"string", "hello", `"hello"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := Marshal(tc.value)
			if err != nil {
				t.Fatalf("Marshal returned error: %v", err)
			}
			if string(data) != tc.want {
				t.Fatalf("Marshal() = %s, want %s", data, tc.want)
			}
		})
	}
}

func TestMarshalUnsupportedType(t *testing.T) {
	if _, err := Marshal(map[string]any{"ch": make(chan int)}); err == nil {
		t.Fatal("expected error for channel value")
	}
}

func TestUnmarshalAppliesDefaultsForMissingFields(t *testing.T) {
	var env testEnvelope
	if err := Unmarshal([]byte(`{"success":true}`), &env); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}

	if env.Message != "Request processed successfully." {
		t.Fatalf("expected default message, got %q", env.Message)
	}
	if !env.Success {
		t.Fatal("expected success from payload")
	}
}

func TestDecoderDisallowUnknownFields(t *testing.T) {
	decoder := NewDecoder(bytes.NewReader([]byte(`{"success":true,"unknown":1}`)))
	decoder.DisallowUnknownFields()

	var env testEnvelope
	if err := decoder.Decode(&env); err == nil {
		t.Fatal("expected error for unknown field, but got none")
	}
}

func TestDecoderUseNumber(t *testing.T) {
	decoder := NewDecoder(bytes.NewReader([]byte(`{"id":999999999999999999}`)))
	decoder.UseNumber()

	var result map[string]any
	if err := decoder.Decode(&result); err != nil {
		t.Fatalf("Decode with UseNumber failed: %v", err)
	}
	if _, ok := result["id"].(stdjson.Number); !ok {
		t.Fatalf("expected json.Number, got %T", result["id"])
	}
}

func TestEncoderSetIndent(t *testing.T) {
	var buf bytes.Buffer
	encoder := NewEncoder(&buf)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(&testEnvelope{Message: "ok"}); err != nil {
		t.Fatalf("Encode with SetIndent failed: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"message\"") {
		t.Fatalf("expected indented output, got: %s", buf.String())
	}
}

func TestValid(t *testing.T) {
	if !Valid([]byte(`{"success":false}`)) {
		t.Fatal("expected valid document")
	}
	if Valid([]byte(`{"success":`)) {
		t.Fatal("expected invalid document")
	}
}
