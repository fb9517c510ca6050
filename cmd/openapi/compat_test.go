package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseDoc = `
paths:
  /videos:
    get:
      responses:
        "200": {}
        "400": {}
    post:
      responses:
        "201": {}
  /tweets:
    post:
      responses:
        "201": {}
`

func TestCompare(t *testing.T) {
	base, err := parseSpec([]byte(baseDoc))
	require.NoError(t, err)

	t.Run("identical", func(t *testing.T) {
		assert.Empty(t, compare(base, base))
	})

	t.Run("additions are compatible", func(t *testing.T) {
		rev, err := parseSpec([]byte(baseDoc + `
  /playlist:
    post:
      responses:
        "201": {}
`))
		require.NoError(t, err)
		assert.Empty(t, compare(base, rev))
	})

	t.Run("removals are reported", func(t *testing.T) {
		rev, err := parseSpec([]byte(`
paths:
  /videos:
    get:
      responses:
        "200": {}
`))
		require.NoError(t, err)
		assert.Equal(t, []string{
			"removed operation: POST /videos",
			"removed path: /tweets",
			"removed response code: GET /videos -> 400",
		}, compare(base, rev))
	})
}

func TestParseSpec_RequiresPaths(t *testing.T) {
	_, err := parseSpec([]byte("swagger: \"2.0\"\n"))
	assert.Error(t, err)
}

func TestRenderYAML_CoversRoutes(t *testing.T) {
	data, err := renderYAML()
	require.NoError(t, err)

	spec, err := parseSpec(data)
	require.NoError(t, err)
	for _, path := range []string{"/videos", "/videos/{videoId}", "/playlist/add/{videoId}/{playlistId}", "/ws"} {
		assert.Contains(t, spec.Paths, path)
	}
	assert.Contains(t, spec.Paths["/likes/toggle/v/{videoId}"], "post")
}
