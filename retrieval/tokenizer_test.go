package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("lowercases", func(t *testing.T) {
		assert.Equal(t, "platobna karta", Normalize("PLATOBNA Karta"))
	})

	t.Run("strips diacritics", func(t *testing.T) {
		assert.Equal(t, "platobna karta", Normalize("Platobná Karta"))
		assert.Equal(t, "ucet pre zivnostnikov", Normalize("Účet pre živnostníkov"))
	})

	t.Run("leaves plain ascii alone", func(t *testing.T) {
		assert.Equal(t, "sporenie", Normalize("sporenie"))
	})
}

func TestTokenize(t *testing.T) {
	t.Run("splits on punctuation and whitespace", func(t *testing.T) {
		tokens := Tokenize("Hypotéka: úroková sadzba?")
		assert.Equal(t, []string{"hypoteka", "urokova", "sadzba"}, tokens)
	})

	t.Run("drops short tokens", func(t *testing.T) {
		tokens := Tokenize("to je QR kód")
		assert.Equal(t, []string{"kod"}, tokens)
	})

	t.Run("drops stopwords and brand terms", func(t *testing.T) {
		tokens := Tokenize("ako si mám otvoriť účet v Slovenskej sporiteľni")
		assert.NotContains(t, tokens, "ako")
		assert.NotContains(t, tokens, "slovenska")
		assert.Contains(t, tokens, "ucet")
	})

	t.Run("all stopwords yields no tokens", func(t *testing.T) {
		assert.Empty(t, Tokenize("čo je to"))
	})

	t.Run("empty query", func(t *testing.T) {
		assert.Empty(t, Tokenize(""))
	})
}

func TestHasBusinessHint(t *testing.T) {
	assert.True(t, HasBusinessHint(Tokenize("účet na živnosť")))
	assert.True(t, HasBusinessHint(Tokenize("firemný účet")))
	assert.False(t, HasBusinessHint(Tokenize("osobný účet pre študentov")))
	assert.False(t, HasBusinessHint(nil))
}
