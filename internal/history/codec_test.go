package history

import (
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()
	in := map[int64]string{
		41: "hi",
		42: "brb",
		7:  "text with \"quotes\" and\nnewlines",
	}
	blob, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for id, text := range in {
		if out[id] != text {
			t.Fatalf("id %d = %q, want %q", id, out[id], text)
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	t.Parallel()
	m := map[int64]string{3: "c", 1: "a", 2: "b"}
	first, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Encode(m)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if again != first {
			t.Fatalf("non-deterministic encoding: %q vs %q", again, first)
		}
	}
}

func TestEncodeNilMap(t *testing.T) {
	t.Parallel()
	blob, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode(nil): %v", err)
	}
	if blob != "{}" {
		t.Fatalf("Encode(nil) = %q, want {}", blob)
	}
	m, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(m) != 0 {
		t.Fatalf("expected empty mapping, got %v", m)
	}
}

func TestDecodeMalformed(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		blob string
	}{
		{name: "empty", blob: ""},
		{name: "whitespace", blob: "   "},
		{name: "null", blob: "null"},
		{name: "array", blob: `[1,2,3]`},
		{name: "truncated", blob: `{"41":"hi`},
		{name: "non-numeric key", blob: `{"abc":"hi"}`},
		{name: "non-string value", blob: `{"41":17}`},
		{name: "trailing garbage", blob: `{"41":"hi"} tail`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.blob)
			if err == nil {
				t.Fatalf("Decode(%q): expected error", tc.blob)
			}
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("Decode(%q): error %v is not ErrMalformed", tc.blob, err)
			}
		})
	}
}
