package cache

import (
	"testing"
	"time"

	"clinex/pkg/core"

	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	c, err := New(t.TempDir(), time.Hour)
	require.NoError(t, err)

	opts := core.GenerateOptions{Temperature: 0.2}
	resp := core.Response{Content: `{"diabetes":true}`, TokenUsage: core.TokenUsage{TotalTokens: 42}}

	_, hit := c.Get("gemini-2.0-flash", "prompt", opts)
	require.False(t, hit)

	require.NoError(t, c.Set("gemini-2.0-flash", "prompt", opts, resp))
	got, hit := c.Get("gemini-2.0-flash", "prompt", opts)
	require.True(t, hit)
	require.Equal(t, resp.Content, got.Content)
	require.Equal(t, 42, got.TokenUsage.TotalTokens)
}

func TestCacheKeyCoversModelAndOptions(t *testing.T) {
	c, err := New(t.TempDir(), time.Hour)
	require.NoError(t, err)

	opts := core.GenerateOptions{}
	require.NoError(t, c.Set("model-a", "prompt", opts, core.Response{Content: "a"}))

	_, hit := c.Get("model-b", "prompt", opts)
	require.False(t, hit)
	_, hit = c.Get("model-a", "prompt", core.GenerateOptions{Temperature: 0.5})
	require.False(t, hit)
}

func TestCacheExpiresEntries(t *testing.T) {
	c, err := New(t.TempDir(), time.Hour)
	require.NoError(t, err)
	require.NoError(t, c.Set("m", "p", core.GenerateOptions{}, core.Response{Content: "x"}))

	c.TTL = time.Nanosecond
	time.Sleep(time.Millisecond)
	_, hit := c.Get("m", "p", core.GenerateOptions{})
	require.False(t, hit)
}
