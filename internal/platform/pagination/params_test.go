package pagination

import (
	"errors"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	params, err := Parse(nil, Options{})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if params.PageSize != DefaultPageSize {
		t.Fatalf("expected default page size %d, got %d", DefaultPageSize, params.PageSize)
	}
	if params.PageToken != "" {
		t.Fatalf("expected empty token, got %q", params.PageToken)
	}
}

func TestParsePageSize(t *testing.T) {
	cases := []struct {
		raw  string
		opts Options
		want int
	}{
		{raw: "5", want: 5},
		{raw: " 20 ", want: 20},
		{raw: "500", want: DefaultMaxPageSize},
		{raw: "30", opts: Options{MaxPageSize: 25}, want: 25},
		{raw: "", opts: Options{DefaultPageSize: 100, MaxPageSize: 40}, want: 40},
	}
	for _, tc := range cases {
		params, err := Parse(url.Values{"pageSize": {tc.raw}}, tc.opts)
		if err != nil {
			t.Fatalf("pageSize=%q: unexpected error %v", tc.raw, err)
		}
		if params.PageSize != tc.want {
			t.Fatalf("pageSize=%q: expected %d, got %d", tc.raw, tc.want, params.PageSize)
		}
	}
}

func TestParseInvalidPageSize(t *testing.T) {
	for _, raw := range []string{"0", "-3", "ten"} {
		_, err := Parse(url.Values{"pageSize": {raw}}, Options{})
		if !errors.Is(err, ErrInvalidPageSize) {
			t.Fatalf("pageSize=%q: expected ErrInvalidPageSize, got %v", raw, err)
		}
	}
}

func TestParsePageToken(t *testing.T) {
	params, err := Parse(url.Values{"pageToken": {" eyJpZCI6Im5kb2xlIn0 "}}, Options{})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if params.PageToken != "eyJpZCI6Im5kb2xlIn0" {
		t.Fatalf("unexpected token %q", params.PageToken)
	}

	for _, token := range []string{"abc def", strings.Repeat("a", maxPageTokenLength+1)} {
		if _, err := Parse(url.Values{"pageToken": {token}}, Options{}); !errors.Is(err, ErrInvalidPageToken) {
			t.Fatalf("expected ErrInvalidPageToken, got %v", err)
		}
	}
}

func TestFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/recipes?pageSize=3&pageToken=abc", nil)
	params, err := FromRequest(req, Options{})
	if err != nil {
		t.Fatalf("FromRequest returned error: %v", err)
	}
	if params.PageSize != 3 || params.PageToken != "abc" {
		t.Fatalf("unexpected params %+v", params)
	}
	if _, err := FromRequest(nil, Options{}); err == nil {
		t.Fatal("expected error for nil request")
	}
}
