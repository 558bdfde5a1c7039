package services

import (
	"strings"
	"testing"
)

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{name: "plain", input: "Ndolé with shrimp", want: "Ndolé with shrimp"},
		{name: "markup", input: `<a href="x">Eru</a> &amp; <b>fufu</b>`, want: "Eru & fufu"},
		{name: "script", input: "<script>alert(1)</script>ok", want: "ok"},
		{name: "spaces", input: "  a \t  b\r\n\r\n c  ", want: "a b\n\nc"},
		{name: "controls", input: "bad\x07\x1b bytes", want: "bad bytes"},
		{name: "limit", input: "éééééé", limit: 3, want: "ééé"},
		{name: "empty", input: " \n ", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitizeText(tc.input, tc.limit); got != tc.want {
				t.Fatalf("sanitizeText(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}

	long := strings.Repeat("x", 50)
	if got := sanitizeText(long, 10); len(got) != 10 {
		t.Fatalf("expected truncation to 10 runes, got %d", len(got))
	}
}
