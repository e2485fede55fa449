package main

import (
	"bytes"
	"testing"

	"github.com/brojonat/floorlink/service/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFprintJSON(t *testing.T) {
	quote := pricing.ComputeQuote(1_000_000, 500, true)

	t.Run("plain output", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, fprintJSON(&buf, quote, ""))
		assert.Contains(t, buf.String(), `"total": 1065000`)
	})

	t.Run("jq filter", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, fprintJSON(&buf, quote, ".total"))
		assert.Equal(t, "1065000\n", buf.String())
	})

	t.Run("invalid jq expression", func(t *testing.T) {
		var buf bytes.Buffer
		err := fprintJSON(&buf, quote, ".[broken")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jq expression")
	})
}
