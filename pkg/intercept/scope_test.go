package intercept

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestScope_RestoresPreviousTable(t *testing.T) {
	o := NewOptions()
	require.NoError(t, o.RegisterString(http.MethodGet, "https://example.com/a", "outer"))

	scope := o.BeginScope()
	require.NoError(t, o.RegisterString(http.MethodGet, "https://example.com/a", "inner"))
	require.NoError(t, o.RegisterString(http.MethodGet, "https://example.com/b", "b"))
	assert.Equal(t, 2, o.Count())
	assert.Equal(t, "inner", readBody(t, getResponse(t, o, http.MethodGet, "https://example.com/a")))

	require.NoError(t, scope.Close())
	assert.Equal(t, 1, o.Count())
	assert.Equal(t, "outer", readBody(t, getResponse(t, o, http.MethodGet, "https://example.com/a")))
	assert.Nil(t, getResponse(t, o, http.MethodGet, "https://example.com/b"))
}

func TestScope_ClearInsideScope(t *testing.T) {
	o := NewOptions()
	require.NoError(t, o.RegisterString(http.MethodGet, "https://example.com/a", "a"))

	scope := o.BeginScope()
	o.Clear()
	assert.Equal(t, 0, o.Count())
	require.NoError(t, scope.Close())
	assert.Equal(t, 1, o.Count())
}

func TestScope_Nested(t *testing.T) {
	o := NewOptions()
	require.NoError(t, o.RegisterString(http.MethodGet, "https://example.com/0", "0"))

	outer := o.BeginScope()
	require.NoError(t, o.RegisterString(http.MethodGet, "https://example.com/1", "1"))

	inner := o.BeginScope()
	require.NoError(t, o.RegisterString(http.MethodGet, "https://example.com/2", "2"))
	assert.Equal(t, 3, o.Count())

	require.NoError(t, inner.Close())
	assert.Equal(t, 2, o.Count())

	require.NoError(t, outer.Close())
	assert.Equal(t, 1, o.Count())
	assert.NotNil(t, getResponse(t, o, http.MethodGet, "https://example.com/0"))
}

func TestScope_CloseIsIdempotent(t *testing.T) {
	o := NewOptions()
	outer := o.BeginScope()
	require.NoError(t, o.RegisterString(http.MethodGet, "https://example.com/1", "1"))

	inner := o.BeginScope()
	require.NoError(t, inner.Close())
	require.NoError(t, inner.Close())
	assert.Equal(t, 1, o.Count(), "second close must not restore further")

	require.NoError(t, outer.Close())
	assert.Equal(t, 0, o.Count())
}

func TestScope_OutOfOrderCloseIsNoOp(t *testing.T) {
	o := NewOptions()
	outer := o.BeginScope()
	require.NoError(t, o.RegisterString(http.MethodGet, "https://example.com/1", "1"))
	inner := o.BeginScope()
	require.NoError(t, o.RegisterString(http.MethodGet, "https://example.com/2", "2"))

	// outer closes first: the active table is inner's, so nothing changes.
	require.NoError(t, outer.Close())
	assert.Equal(t, 2, o.Count())

	require.NoError(t, inner.Close())
	assert.Equal(t, 1, o.Count())
}

func TestScope_ConcurrentReadersSeeWholeTables(t *testing.T) {
	o := NewOptions()
	for i := 0; i < 10; i++ {
		require.NoError(t, o.RegisterString(http.MethodGet, fmt.Sprintf("https://example.com/%d", i), "base"))
	}

	var g errgroup.Group
	for w := 0; w < 4; w++ {
		g.Go(func() error {
			for i := 0; i < 200; i++ {
				req, err := http.NewRequestWithContext(context.Background(), http.MethodGet,
					fmt.Sprintf("https://example.com/%d", i%10), nil)
				if err != nil {
					return err
				}
				resp, err := o.GetResponse(context.Background(), req)
				if err != nil {
					return err
				}
				if resp == nil {
					return fmt.Errorf("base registration %d missing", i%10)
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		for i := 0; i < 100; i++ {
			scope := o.BeginScope()
			if err := o.RegisterString(http.MethodGet, "https://example.com/scoped", "scoped"); err != nil {
				return err
			}
			if err := scope.Close(); err != nil {
				return err
			}
		}
		return nil
	})

	require.NoError(t, g.Wait())
	assert.Equal(t, 10, o.Count())
}

func TestOptions_ConcurrentRegisterAndResolve(t *testing.T) {
	o := NewOptions()
	g, ctx := errgroup.WithContext(context.Background())

	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for i := 0; i < 50; i++ {
				rawURL := fmt.Sprintf("https://example.com/%d/%d", w, i)
				if err := o.RegisterString(http.MethodGet, rawURL, rawURL); err != nil {
					return err
				}
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
				if err != nil {
					return err
				}
				resp, err := o.GetResponse(ctx, req)
				if err != nil {
					return err
				}
				if resp == nil {
					return fmt.Errorf("registration for %s not visible", rawURL)
				}
				_ = resp.Body.Close()
			}
			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.Equal(t, 400, o.Count())
}
