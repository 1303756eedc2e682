package matching

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakdown_PathMismatch(t *testing.T) {
	c := Criteria{
		Method: http.MethodGet,
		URL:    URLCriteria{Scheme: "https", Host: "api.example.com", Port: NoPort, Path: "/users"},
	}
	r, err := http.NewRequest(http.MethodGet, "https://api.example.com/orders", nil)
	require.NoError(t, err)

	nm := Breakdown(context.Background(), c, nil, r)
	require.Len(t, nm.Fields, 5)
	assert.Equal(t, 80, nm.MatchPercentage)
	assert.Equal(t, `method, scheme, host, and query matched, but path expected "/users", got "/orders"`, nm.Reason)
}

func TestBreakdown_IgnoredPartsAreSkipped(t *testing.T) {
	c := Criteria{
		Method: http.MethodPost,
		URL:    URLCriteria{Scheme: "http", Port: 8080, HasCustomPort: true, IgnoreHost: true, IgnorePath: true, IgnoreQuery: true},
	}
	r, err := http.NewRequest(http.MethodPost, "http://other/x?y=1", nil)
	require.NoError(t, err)

	nm := Breakdown(context.Background(), c, nil, r)
	fields := make([]string, len(nm.Fields))
	for i, f := range nm.Fields {
		fields[i] = f.Field
	}
	assert.Equal(t, []string{"method", "scheme", "port"}, fields)
	assert.Contains(t, nm.Reason, `port expected "8080", got "80"`)
}

func TestBreakdown_HeadersAndContent(t *testing.T) {
	c := Criteria{
		Method:  http.MethodPost,
		URL:     URLCriteria{Scheme: "https", Host: "x", Port: NoPort, Path: "/"},
		Headers: http.Header{"Accept": {"application/json"}},
		Content: func(_ context.Context, body []byte) (bool, error) {
			return string(body) == "expected", nil
		},
	}
	r, err := http.NewRequest(http.MethodPost, "https://x/", strings.NewReader("actual"))
	require.NoError(t, err)

	nm := Breakdown(context.Background(), c, nil, r)
	assert.Contains(t, nm.Reason, `header Accept expected "application/json", got "(missing)"`)
	last := nm.Fields[len(nm.Fields)-1]
	assert.Equal(t, "content", last.Field)
	assert.False(t, last.Matched)
}

func TestBreakdown_CaseInsensitiveComparer(t *testing.T) {
	c := Criteria{
		Method: http.MethodGet,
		URL:    URLCriteria{Scheme: "https", Host: "x", Port: NoPort, Path: "/Users"},
	}
	r, err := http.NewRequest(http.MethodGet, "https://x/users", nil)
	require.NoError(t, err)

	assert.Equal(t, 100, Breakdown(context.Background(), c, IgnoreCase, r).MatchPercentage)
	assert.Equal(t, 80, Breakdown(context.Background(), c, Ordinal, r).MatchPercentage)
}

func TestGenerateReason(t *testing.T) {
	assert.Equal(t, "no fields to compare", GenerateReason(nil))
	assert.Equal(t, "all specified fields matched", GenerateReason([]FieldResult{{Field: "method", Matched: true}}))
	assert.Equal(t, `method expected "GET", got "PUT"`,
		GenerateReason([]FieldResult{{Field: "method", Expected: "GET", Actual: "PUT"}}))
	assert.Equal(t, `method and host matched, but path expected "/a", got "/b"`,
		GenerateReason([]FieldResult{
			{Field: "method", Matched: true},
			{Field: "host", Matched: true},
			{Field: "path", Expected: "/a", Actual: "/b"},
		}))
}
