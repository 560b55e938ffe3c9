package request

import (
	"fmt"
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ListParams holds pagination and search parameters.
type ListParams struct {
	Limit  int
	Cursor string
	Search string
}

// ParseListParams extracts limit, cursor and search from the query string.
// An absent or invalid limit falls back to DefaultLimit; larger values are
// capped at MaxLimit.
func ParseListParams(r *http.Request) ListParams {
	q := r.URL.Query()
	p := ListParams{
		Limit:  DefaultLimit,
		Cursor: q.Get("cursor"),
		Search: q.Get("search"),
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			p.Limit = limit
		}
	}

	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	return p
}

// ParseBool reads an optional boolean query parameter. Absent means nil.
func ParseBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("query parameter %s must be a boolean", name)
	}
	return &v, nil
}
