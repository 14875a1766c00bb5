package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBM25Scores(t *testing.T) {
	query := []string{"hypoteka", "sadzba"}

	t.Run("empty pool", func(t *testing.T) {
		assert.Nil(t, BM25Scores(query, nil, DefaultK1, DefaultB))
	})

	t.Run("no overlap scores zero", func(t *testing.T) {
		pool := [][]string{{"sporenie", "detske"}, {"poistenie", "cestovne"}}
		scores := BM25Scores(query, pool, DefaultK1, DefaultB)
		require.Len(t, scores, 2)
		assert.Zero(t, scores[0])
		assert.Zero(t, scores[1])
	})

	t.Run("matching chunk outranks non-matching", func(t *testing.T) {
		pool := [][]string{
			{"hypoteka", "urokova", "sadzba", "fixacia"},
			{"sporenie", "detske", "konto"},
		}
		scores := BM25Scores(query, pool, DefaultK1, DefaultB)
		require.Len(t, scores, 2)
		assert.Greater(t, scores[0], scores[1])
	})

	t.Run("term frequency raises the score with saturation", func(t *testing.T) {
		pool := [][]string{
			{"hypoteka", "uver", "byvanie", "banka"},
			{"hypoteka", "hypoteka", "byvanie", "banka"},
			{"hypoteka", "hypoteka", "hypoteka", "banka"},
		}
		scores := BM25Scores([]string{"hypoteka"}, pool, DefaultK1, DefaultB)
		require.Len(t, scores, 3)
		assert.Greater(t, scores[1], scores[0])
		assert.Greater(t, scores[2], scores[1])
		// diminishing returns
		assert.Greater(t, scores[1]-scores[0], scores[2]-scores[1])
	})

	t.Run("rare term weighs more than a common one", func(t *testing.T) {
		pool := [][]string{
			{"ucet", "fixacia"},
			{"ucet", "sporenie"},
			{"ucet", "poistenie"},
			{"ucet", "karta"},
		}
		scores := BM25Scores([]string{"fixacia"}, pool, DefaultK1, DefaultB)
		common := BM25Scores([]string{"ucet"}, pool, DefaultK1, DefaultB)
		assert.Greater(t, scores[0], common[0])
	})

	t.Run("query term absent from pool contributes nothing", func(t *testing.T) {
		pool := [][]string{{"sporenie"}}
		scores := BM25Scores([]string{"neexistuje"}, pool, DefaultK1, DefaultB)
		assert.Zero(t, scores[0])
	})

	t.Run("empty chunk token lists", func(t *testing.T) {
		pool := [][]string{{}, {}}
		scores := BM25Scores(query, pool, DefaultK1, DefaultB)
		require.Len(t, scores, 2)
		assert.Zero(t, scores[0])
	})
}
