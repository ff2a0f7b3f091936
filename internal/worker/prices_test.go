package worker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPrices(t *testing.T) {
	t.Run("currency codes and symbols", func(t *testing.T) {
		text := "Ocean freight USD 1,250.00\nLocal delivery R 4200\nHandling $85.50\nSurcharge EUR 99"
		prices := DetectPrices(text)
		require.Len(t, prices, 4)

		assert.Equal(t, 1250.0, prices[0].Amount)
		assert.Equal(t, "USD", prices[0].Currency)
		assert.Equal(t, "Ocean freight USD 1,250.00", prices[0].Context)

		assert.Equal(t, 4200.0, prices[1].Amount)
		assert.Equal(t, "ZAR", prices[1].Currency)

		assert.Equal(t, 85.5, prices[2].Amount)
		assert.Equal(t, "USD", prices[2].Currency)

		assert.Equal(t, 99.0, prices[3].Amount)
		assert.Equal(t, "EUR", prices[3].Currency)
	})

	t.Run("multiple amounts on one line", func(t *testing.T) {
		prices := DetectPrices("Base R 100 plus fuel R 25.50")
		require.Len(t, prices, 2)
		assert.Equal(t, 100.0, prices[0].Amount)
		assert.Equal(t, 25.5, prices[1].Amount)
	})

	t.Run("text without amounts", func(t *testing.T) {
		assert.Empty(t, DetectPrices("Terms and conditions apply.\nValid for 30 days."))
	})

	t.Run("bare numbers are not prices", func(t *testing.T) {
		assert.Empty(t, DetectPrices("Container count 3, reference 20260815"))
	})

	t.Run("long context lines are truncated", func(t *testing.T) {
		line := "R 500 "
		for len(line) < 300 {
			line += "x"
		}
		prices := DetectPrices(line)
		require.Len(t, prices, 1)
		assert.LessOrEqual(t, len(prices[0].Context), maxContextLen)
	})

	t.Run("truncation keeps valid UTF-8", func(t *testing.T) {
		// Pad so a multi-byte euro sign straddles the truncation boundary.
		line := "$ 75 " + strings.Repeat("x", maxContextLen-6) + "€€€€"
		prices := DetectPrices(line)
		require.NotEmpty(t, prices)
		assert.LessOrEqual(t, len(prices[0].Context), maxContextLen)
		assert.True(t, utf8.ValidString(prices[0].Context))
	})
}
