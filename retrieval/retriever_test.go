package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/ivesna/ai/mock"
	"github.com/poiesic/ivesna/core"
	"github.com/poiesic/ivesna/storage"
	"github.com/poiesic/ivesna/storage/badger"
)

const testTenant = "slsp"

type retrieverFixture struct {
	documents storage.DocumentRepository
	chunks    storage.ChunkRepository
	embedder  *mock.MockEmbedder
	retriever *Retriever
}

func newRetrieverFixture(t *testing.T, opts ...Option) *retrieverFixture {
	t.Helper()

	docRepo, chunkRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		chunkRepo.Close()
		docRepo.Close()
		backend.Close()
	})

	embedder := mock.NewMockEmbedder()
	// Fixed query embedding; chunk embeddings are set per test.
	embedder.EmbedTextFunc = func(_ context.Context, _ string) ([]float32, error) {
		return []float32{1, 0}, nil
	}

	r, err := NewRetriever(chunkRepo, docRepo, embedder, opts...)
	require.NoError(t, err)

	return &retrieverFixture{
		documents: docRepo,
		chunks:    chunkRepo,
		embedder:  embedder,
		retriever: r,
	}
}

// addPage stores a document with a single chunk and returns the document.
func (f *retrieverFixture) addPage(t *testing.T, url, title, text string, embedding []float32) *core.Document {
	t.Helper()
	ctx := context.Background()

	docs, err := f.documents.AddDocuments(ctx, &core.Document{
		Tenant: testTenant,
		URL:    url,
		Title:  title,
	})
	require.NoError(t, err)
	doc := docs[0]

	f.addChunk(t, doc, 0, text, embedding)
	return doc
}

func (f *retrieverFixture) addChunk(t *testing.T, doc *core.Document, ordinal int, text string, embedding []float32) {
	t.Helper()
	_, err := f.chunks.AddChunks(context.Background(), &core.Chunk{
		DocumentId: doc.Id,
		Tenant:     testTenant,
		Ordinal:    ordinal,
		Text:       text,
		Embedding:  embedding,
	})
	require.NoError(t, err)
}

func TestNewRetriever(t *testing.T) {
	docRepo, chunkRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		chunkRepo.Close()
		docRepo.Close()
		backend.Close()
	}()
	embedder := mock.NewMockEmbedder()

	t.Run("requires chunk repository", func(t *testing.T) {
		_, err := NewRetriever(nil, docRepo, embedder)
		assert.ErrorIs(t, err, ErrChunkRepositoryRequired)
	})

	t.Run("requires document repository", func(t *testing.T) {
		_, err := NewRetriever(chunkRepo, nil, embedder)
		assert.ErrorIs(t, err, ErrDocumentRepositoryRequired)
	})

	t.Run("requires embedder", func(t *testing.T) {
		_, err := NewRetriever(chunkRepo, docRepo, nil)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("rejects bad options", func(t *testing.T) {
		_, err := NewRetriever(chunkRepo, docRepo, embedder, WithTopK(0))
		assert.Error(t, err)

		_, err = NewRetriever(chunkRepo, docRepo, embedder, WithPreselectLimit(-1))
		assert.Error(t, err)

		_, err = NewRetriever(chunkRepo, docRepo, embedder, WithBM25Parameters(-1, 0.5))
		assert.Error(t, err)
	})

	t.Run("rejects invalid rule set", func(t *testing.T) {
		_, err := NewRetriever(chunkRepo, docRepo, embedder,
			WithRuleSet(RuleSet{Min: -1, Max: 1, Rules: []Rule{{Kind: "nope"}}}))
		assert.ErrorIs(t, err, ErrInvalidRule)
	})
}

func TestRetrieveEmptyTenant(t *testing.T) {
	f := newRetrieverFixture(t)

	results, err := f.retriever.Retrieve(context.Background(), "nobody", "hypoteka", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotNil(t, results)
}

func TestRetrieveRanking(t *testing.T) {
	f := newRetrieverFixture(t)

	a := f.addPage(t, "https://example.sk/a", "", "podmienky produktu", []float32{0.9, 0.436})
	b := f.addPage(t, "https://example.sk/b", "", "popis sluzby", []float32{0.5, 0.866})
	f.addPage(t, "https://example.sk/c", "", "ine informacie", []float32{0.1, 0.995})

	results, err := f.retriever.Retrieve(context.Background(), testTenant, "hypoteka", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, a.Id, results[0].DocumentId)
	assert.Equal(t, b.Id, results[1].DocumentId)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Equal(t, "https://example.sk/a", results[0].URL)
}

func TestRetrieveBestChunkPerDocument(t *testing.T) {
	f := newRetrieverFixture(t)

	doc := f.addPage(t, "https://example.sk/a", "", "slabsi odsek", []float32{0.2, 0.98})
	f.addChunk(t, doc, 1, "silnejsi odsek", []float32{0.95, 0.312})

	results, err := f.retriever.Retrieve(context.Background(), testTenant, "hypoteka", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "silnejsi odsek", results[0].Text)
	assert.Equal(t, doc.Id, results[0].DocumentId)
}

func TestRetrieveDeduplicatesByURL(t *testing.T) {
	f := newRetrieverFixture(t)

	// Re-ingestion can leave two document rows for one URL.
	url := "https://example.sk/a"
	f.addPage(t, url, "", "stara verzia", []float32{0.4, 0.917})
	f.addPage(t, url, "", "nova verzia", []float32{0.9, 0.436})

	results, err := f.retriever.Retrieve(context.Background(), testTenant, "hypoteka", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "nova verzia", results[0].Text)
}

func TestRetrievePriorShiftsRanking(t *testing.T) {
	f := newRetrieverFixture(t)

	// Identical text and embedding, so cosine and keyword scores tie
	// and only the page prior separates the two documents.
	embedding := []float32{1, 0}
	hub := f.addPage(t, "https://www.slsp.sk/sk/ludia/vsetky-ucty", "Všetky účty", "poplatky za vedenie uctu", embedding)
	f.addChunk(t, hub, 1, "zoznam vsetkych uctov", []float32{0.5, 0.866})
	pdf := f.addPage(t, "https://www.slsp.sk/content/dam/cennik.pdf", "", "poplatky za vedenie uctu", embedding)

	results, err := f.retriever.Retrieve(context.Background(), testTenant, "poplatky za vedenie uctu", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, hub.Id, results[0].DocumentId)
	assert.Equal(t, pdf.Id, results[1].DocumentId)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestRetrieveBusinessHintFlipsVertical(t *testing.T) {
	f := newRetrieverFixture(t)

	embedding := []float32{1, 0}
	biznis := f.addPage(t, "https://www.slsp.sk/sk/biznis/uvery", "", "uver na podnikanie", embedding)
	ludia := f.addPage(t, "https://www.slsp.sk/sk/ludia/uvery", "", "uver na byvanie", embedding)

	t.Run("consumer query prefers the consumer vertical", func(t *testing.T) {
		results, err := f.retriever.Retrieve(context.Background(), testTenant, "hypoteka", 5)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, ludia.Id, results[0].DocumentId)
	})

	t.Run("business query lifts the business vertical", func(t *testing.T) {
		results, err := f.retriever.Retrieve(context.Background(), testTenant, "uver pre firma", 5)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		// /ludia/ still carries +0.15 but /biznis/ moves from -0.20 to +0.05
		for _, res := range results {
			if res.DocumentId == biznis.Id {
				return
			}
		}
		t.Fatalf("business page missing from results")
	})
}

func TestRetrieveKeywordSignal(t *testing.T) {
	f := newRetrieverFixture(t)

	// Equal embeddings force the ranking onto the keyword score.
	embedding := []float32{1, 0}
	match := f.addPage(t, "https://example.sk/a", "", "fixacia urokovej sadzby hypoteky", embedding)
	f.addPage(t, "https://example.sk/b", "", "cestovne poistenie do zahranicia", embedding)

	results, err := f.retriever.Retrieve(context.Background(), testTenant, "fixacia sadzby", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, match.Id, results[0].DocumentId)
}

func TestRetrieveStopwordOnlyQuery(t *testing.T) {
	f := newRetrieverFixture(t)

	doc := f.addPage(t, "https://example.sk/a", "", "hocijaky obsah", []float32{0.8, 0.6})

	results, err := f.retriever.Retrieve(context.Background(), testTenant, "čo je to", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, doc.Id, results[0].DocumentId)
}

func TestRetrieveSkipsUnscorableChunks(t *testing.T) {
	f := newRetrieverFixture(t)

	doc := f.addPage(t, "https://example.sk/a", "", "ok odsek", []float32{0.9, 0.436})
	f.addChunk(t, doc, 1, "bez embeddingu", nil)
	f.addChunk(t, doc, 2, "zly rozmer", []float32{1, 2, 3})

	results, err := f.retriever.Retrieve(context.Background(), testTenant, "hypoteka", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ok odsek", results[0].Text)
}

func TestRetrieveDropsNonPositiveScores(t *testing.T) {
	f := newRetrieverFixture(t)

	f.addPage(t, "https://example.sk/a", "", "opacny smer", []float32{-1, 0})

	results, err := f.retriever.Retrieve(context.Background(), testTenant, "hypoteka", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieveDefaultTopK(t *testing.T) {
	f := newRetrieverFixture(t, WithTopK(2))

	for i, url := range []string{
		"https://example.sk/a", "https://example.sk/b",
		"https://example.sk/c", "https://example.sk/d",
	} {
		f.addPage(t, url, "", "obsah", []float32{0.5 + float32(i)*0.1, 0.5})
	}

	results, err := f.retriever.Retrieve(context.Background(), testTenant, "hypoteka", 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRetrievePreselectLimit(t *testing.T) {
	f := newRetrieverFixture(t, WithPreselectLimit(2))

	f.addPage(t, "https://example.sk/a", "", "prvy", []float32{0.9, 0.436})
	f.addPage(t, "https://example.sk/b", "", "druhy", []float32{0.8, 0.6})
	low := f.addPage(t, "https://example.sk/c", "", "treti", []float32{0.1, 0.995})

	results, err := f.retriever.Retrieve(context.Background(), testTenant, "hypoteka", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.NotEqual(t, low.Id, res.DocumentId)
	}
}

func TestRetrieveEmbedderFailure(t *testing.T) {
	f := newRetrieverFixture(t)
	f.embedder.EmbedTextFunc = func(_ context.Context, _ string) ([]float32, error) {
		return nil, errors.New("connection refused")
	}

	_, err := f.retriever.Retrieve(context.Background(), testTenant, "hypoteka", 5)
	assert.ErrorIs(t, err, ErrEmbeddingProvider)
}

func TestRetrieveCancelledContext(t *testing.T) {
	f := newRetrieverFixture(t)
	f.addPage(t, "https://example.sk/a", "", "obsah", []float32{1, 0})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.retriever.Retrieve(ctx, testTenant, "hypoteka", 5)
	assert.Error(t, err)
}

type recordingMonitor struct {
	started       bool
	tokens        []string
	vectorScored  int
	preselected   int
	keywordScores int
	fused         int
	finished      bool
	resultsCount  int
}

var _ RetrievalMonitor = (*recordingMonitor)(nil)

func (m *recordingMonitor) Start(_ string) { m.started = true }
func (m *recordingMonitor) AfterTokenize(tokens []string, _ bool) {
	m.tokens = tokens
}
func (m *recordingMonitor) AfterVectorScoring(scored []core.ScoredChunk) {
	m.vectorScored = len(scored)
}
func (m *recordingMonitor) AfterPreselect(pool []core.ScoredChunk) {
	m.preselected = len(pool)
}
func (m *recordingMonitor) AfterKeywordScoring(scores []float64) {
	m.keywordScores = len(scores)
}
func (m *recordingMonitor) AfterFusion(fused []core.ScoredChunk) {
	m.fused = len(fused)
}
func (m *recordingMonitor) Finish(results []core.RetrievedChunk) {
	m.finished = true
	m.resultsCount = len(results)
}

func TestRetrieveWithMonitor(t *testing.T) {
	f := newRetrieverFixture(t)
	f.addPage(t, "https://example.sk/a", "", "hypoteka na byvanie", []float32{0.9, 0.436})
	f.addPage(t, "https://example.sk/b", "", "sporenie pre deti", []float32{0.5, 0.866})

	monitor := &recordingMonitor{}
	results, err := f.retriever.RetrieveWithMonitor(context.Background(), testTenant, "hypoteka", 5, monitor)
	require.NoError(t, err)

	assert.True(t, monitor.started)
	assert.Equal(t, []string{"hypoteka"}, monitor.tokens)
	assert.Equal(t, 2, monitor.vectorScored)
	assert.Equal(t, 2, monitor.preselected)
	assert.Equal(t, 2, monitor.keywordScores)
	assert.Equal(t, 2, monitor.fused)
	assert.True(t, monitor.finished)
	assert.Equal(t, len(results), monitor.resultsCount)
}
