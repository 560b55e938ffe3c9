package request

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListParams_Defaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/workflows", nil)
	p := ParseListParams(r)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Empty(t, p.Cursor)
	assert.Empty(t, p.Search)
}

func TestParseListParams_AllParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/workflows?limit=25&cursor=abc123&search=digest", nil)
	p := ParseListParams(r)
	assert.Equal(t, 25, p.Limit)
	assert.Equal(t, "abc123", p.Cursor)
	assert.Equal(t, "digest", p.Search)
}

func TestParseListParams_Limits(t *testing.T) {
	tests := map[string]int{
		"limit=500": MaxLimit,
		"limit=abc": DefaultLimit,
		"limit=0":   DefaultLimit,
		"limit=-3":  DefaultLimit,
		"limit=200": 200,
	}
	for query, want := range tests {
		t.Run(query, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/workflows?"+query, nil)
			assert.Equal(t, want, ParseListParams(r).Limit)
		})
	}
}

func TestParseBool(t *testing.T) {
	r := httptest.NewRequest("GET", "/workflows", nil)
	v, err := ParseBool(r, "active")
	require.NoError(t, err)
	assert.Nil(t, v)

	r = httptest.NewRequest("GET", "/workflows?active=true", nil)
	v, err = ParseBool(r, "active")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.True(t, *v)

	r = httptest.NewRequest("GET", "/workflows?active=0", nil)
	v, err = ParseBool(r, "active")
	require.NoError(t, err)
	assert.False(t, *v)

	r = httptest.NewRequest("GET", "/workflows?active=maybe", nil)
	_, err = ParseBool(r, "active")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "active")
}
