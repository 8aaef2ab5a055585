package intervals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/producerfilm/backend/internal/contracts"
)

func TestSelectExtremes(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		got := SelectExtremes(nil)
		require.NotNil(t, got.Min)
		require.NotNil(t, got.Max)
		assert.Empty(t, got.Min)
		assert.Empty(t, got.Max)
	})

	t.Run("keeps every tie in production order", func(t *testing.T) {
		all := []contracts.ProducerInterval{
			iv("B", 2000, 2001),
			iv("A", 1980, 1993),
			iv("C", 1990, 1991),
			iv("D", 1970, 1983),
			iv("E", 2005, 2010),
		}

		got := SelectExtremes(all)
		assert.Equal(t, []contracts.ProducerInterval{all[0], all[2]}, got.Min)
		assert.Equal(t, []contracts.ProducerInterval{all[1], all[3]}, got.Max)
	})

	t.Run("single interval lands in both lists", func(t *testing.T) {
		all := []contracts.ProducerInterval{iv("A", 1990, 1999)}

		got := SelectExtremes(all)
		assert.Equal(t, all, got.Min)
		assert.Equal(t, all, got.Max)
	})
}
