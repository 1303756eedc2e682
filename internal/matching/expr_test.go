package matching

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpressionMatcher(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		method    string
		url       string
		body      string
		header    map[string]string
		wantMatch bool
	}{
		{
			name:      "method and path",
			source:    `method == "POST" && path startsWith "/orders"`,
			method:    http.MethodPost,
			url:       "https://shop.test/orders/42",
			wantMatch: true,
		},
		{
			name:      "method mismatch",
			source:    `method == "POST"`,
			method:    http.MethodGet,
			url:       "https://shop.test/orders/42",
			wantMatch: false,
		},
		{
			name:      "host and query",
			source:    `host == "shop.test" && query["page"][0] == "2"`,
			method:    http.MethodGet,
			url:       "https://shop.test:8443/items?page=2",
			wantMatch: true,
		},
		{
			name:      "header",
			source:    `"X-Tenant" in header && header["X-Tenant"][0] == "acme"`,
			method:    http.MethodGet,
			url:       "https://shop.test/",
			header:    map[string]string{"X-Tenant": "acme"},
			wantMatch: true,
		},
		{
			name:      "body contains",
			source:    `body contains "urgent"`,
			method:    http.MethodPost,
			url:       "https://shop.test/",
			body:      `{"priority":"urgent"}`,
			wantMatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := CompileExpression(tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.source, m.Source())

			r, err := http.NewRequest(tt.method, tt.url, strings.NewReader(tt.body))
			require.NoError(t, err)
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}

			got, err := m.Match(context.Background(), r)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMatch, got)
		})
	}
}

func TestCompileExpression_Errors(t *testing.T) {
	_, err := CompileExpression(`method ==`)
	assert.Error(t, err)

	_, err = CompileExpression(`path`)
	assert.Error(t, err, "non-boolean expressions are rejected")

	_, err = CompileExpression(`unknownVariable == 1`)
	assert.Error(t, err)
}
