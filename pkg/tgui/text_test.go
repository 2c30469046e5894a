package tgui

import "testing"

func TestTruncRunes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"", 5, ""},
		{"hello", 0, ""},
		{"hello", 5, "hello"},
		{"hello", 4, "hell…"},
		{"héllo", 2, "hé…"},
		{"👤👤👤", 2, "👤👤…"},
	}
	for _, tc := range cases {
		if got := TruncRunes(tc.in, tc.n); got != tc.want {
			t.Errorf("TruncRunes(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestEscAndWrap(t *testing.T) {
	t.Parallel()

	if got := Code("<b>x</b>").String(); got != "<code>&lt;b&gt;x&lt;/b&gt;</code>" {
		t.Fatalf("Code = %q", got)
	}
	if got := Lines(B("a"), Raw(""), Esc("b")).String(); got != "<b>a</b>\nb" {
		t.Fatalf("Lines = %q", got)
	}
}
