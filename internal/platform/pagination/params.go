package pagination

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPageSize defines the fallback number of items returned when the client omits pageSize.
	DefaultPageSize = 12
	// DefaultMaxPageSize caps the supported pageSize to prevent unbounded queries.
	DefaultMaxPageSize = 50

	maxPageTokenLength = 512
)

// Params bundles the paging values extracted from a request. PageToken is opaque and decoded by the
// repository that issued it.
type Params struct {
	PageSize  int
	PageToken string
}

// Options control how Parse behaves for a given handler.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
}

var (
	ErrInvalidPageSize  = errors.New("pagination: invalid pageSize")
	ErrInvalidPageToken = errors.New("pagination: invalid pageToken")
)

// FromRequest parses the supported query parameters from the supplied request.
func FromRequest(r *http.Request, opts Options) (Params, error) {
	if r == nil || r.URL == nil {
		return Params{}, errors.New("pagination: nil request")
	}
	return Parse(r.URL.Query(), opts)
}

// Parse consumes pageSize and pageToken from values.
func Parse(values url.Values, opts Options) (Params, error) {
	if values == nil {
		values = url.Values{}
	}

	pageSize, err := parsePageSize(values.Get("pageSize"), opts)
	if err != nil {
		return Params{}, err
	}

	token := strings.TrimSpace(values.Get("pageToken"))
	if len(token) > maxPageTokenLength || strings.ContainsAny(token, " \t\r\n") {
		return Params{}, fmt.Errorf("%w: malformed token", ErrInvalidPageToken)
	}

	return Params{PageSize: pageSize, PageToken: token}, nil
}

func parsePageSize(raw string, opts Options) (int, error) {
	def := opts.DefaultPageSize
	if def <= 0 {
		def = DefaultPageSize
	}
	max := opts.MaxPageSize
	if max <= 0 {
		max = DefaultMaxPageSize
	}
	if def > max {
		def = max
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	size, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidPageSize, raw)
	}
	if size <= 0 {
		return 0, fmt.Errorf("%w: must be positive", ErrInvalidPageSize)
	}
	if size > max {
		size = max
	}
	return size, nil
}
