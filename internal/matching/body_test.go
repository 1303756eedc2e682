package matching

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormContent(t *testing.T) {
	expected := map[string]string{
		"grant_type": "client_credentials",
		"scope":      "read",
	}

	tests := []struct {
		name      string
		body      string
		wantMatch bool
	}{
		{
			name:      "exact pairs",
			body:      "grant_type=client_credentials&scope=read",
			wantMatch: true,
		},
		{
			name:      "superset with extra fields",
			body:      "grant_type=client_credentials&scope=read&client_id=abc",
			wantMatch: true,
		},
		{
			name:      "missing expected key",
			body:      "grant_type=client_credentials",
			wantMatch: false,
		},
		{
			name:      "mismatched value",
			body:      "grant_type=client_credentials&scope=write",
			wantMatch: false,
		},
		{
			name:      "value comparison is case-sensitive",
			body:      "grant_type=Client_Credentials&scope=read",
			wantMatch: false,
		},
		{
			name:      "repeated key carrying the expected value",
			body:      "grant_type=client_credentials&scope=write&scope=read",
			wantMatch: true,
		},
		{
			name:      "unparsable body",
			body:      "%zz",
			wantMatch: false,
		},
		{
			name:      "empty body",
			body:      "",
			wantMatch: false,
		},
	}

	predicate := FormContent(expected)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := predicate(context.Background(), []byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantMatch, got)
		})
	}
}

func TestFormContent_CopiesExpected(t *testing.T) {
	expected := map[string]string{"a": "1"}
	predicate := FormContent(expected)
	expected["a"] = "2"

	got, err := predicate(context.Background(), []byte("a=1"))
	require.NoError(t, err)
	assert.True(t, got)
}

func TestMatchFormSubset(t *testing.T) {
	form := url.Values{"a": {"1"}, "b": {"2"}}
	assert.True(t, MatchFormSubset(map[string]string{}, form))
	assert.True(t, MatchFormSubset(map[string]string{"a": "1"}, form))
	assert.False(t, MatchFormSubset(map[string]string{"c": "3"}, form))
}

func TestReadBody(t *testing.T) {
	t.Run("nil body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
		data, err := ReadBody(r)
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("body is buffered and replayable", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "http://example.com/", io.NopCloser(strings.NewReader("payload")))
		r.GetBody = nil

		data, err := ReadBody(r)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))

		again, err := ReadBody(r)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(again))

		rest, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(rest))
	})

	t.Run("GetBody does not consume Body", func(t *testing.T) {
		r, err := http.NewRequest(http.MethodPost, "http://example.com/", strings.NewReader("abc"))
		require.NoError(t, err)

		data, err := ReadBody(r)
		require.NoError(t, err)
		assert.Equal(t, "abc", string(data))

		rest, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "abc", string(rest))
	})
}
