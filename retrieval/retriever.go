// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/poiesic/ivesna/ai"
	"github.com/poiesic/ivesna/core"
	"github.com/poiesic/ivesna/storage"
)

const (
	// DefaultTopK is the number of results returned when the caller
	// does not ask for a specific count.
	DefaultTopK = 6

	// DefaultPreselectLimit caps the candidate pool that keyword
	// scoring and prior evaluation run over.
	DefaultPreselectLimit = 300

	// DefaultK1 and DefaultB are the BM25 term saturation and length
	// normalization parameters.
	DefaultK1 = 1.2
	DefaultB  = 0.75

	// Fusion weights for the three ranking signals.
	DefaultCosineWeight  = 0.60
	DefaultKeywordWeight = 0.25
	DefaultPriorWeight   = 0.15

	// DefaultEmbedTimeout bounds the query embedding call.
	DefaultEmbedTimeout = 30 * time.Second

	// DefaultStoreTimeout bounds each store read.
	DefaultStoreTimeout = 10 * time.Second
)

// Retriever ranks stored chunks against a query by fusing vector
// similarity, pool-relative BM25 and a structural page prior.
type Retriever struct {
	chunkRepository    storage.ChunkRepository
	documentRepository storage.DocumentRepository
	embedder           ai.Embedder
	priors             *PriorEvaluator

	topK           int
	preselectLimit int
	k1, b          float64
	cosineWeight   float64
	keywordWeight  float64
	priorWeight    float64
	embedTimeout   time.Duration
	storeTimeout   time.Duration

	logger *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithRuleSet replaces the default prior rule table.
func WithRuleSet(set RuleSet) Option {
	return func(r *Retriever) error {
		ev, err := NewPriorEvaluator(set)
		if err != nil {
			return err
		}
		r.priors = ev
		return nil
	}
}

// WithTopK sets the default result count used when a call passes k <= 0.
func WithTopK(k int) Option {
	return func(r *Retriever) error {
		if k <= 0 {
			return fmt.Errorf("top k must be positive, got %d", k)
		}
		r.topK = k
		return nil
	}
}

// WithPreselectLimit sets the vector preselection pool size.
func WithPreselectLimit(m int) Option {
	return func(r *Retriever) error {
		if m <= 0 {
			return fmt.Errorf("preselect limit must be positive, got %d", m)
		}
		r.preselectLimit = m
		return nil
	}
}

// WithBM25Parameters overrides the k1 and b parameters.
func WithBM25Parameters(k1, b float64) Option {
	return func(r *Retriever) error {
		if k1 < 0 || b < 0 || b > 1 {
			return fmt.Errorf("bm25 parameters out of range: k1=%.2f b=%.2f", k1, b)
		}
		r.k1 = k1
		r.b = b
		return nil
	}
}

// WithFusionWeights overrides the cosine, keyword and prior weights.
func WithFusionWeights(cosine, keyword, prior float64) Option {
	return func(r *Retriever) error {
		if cosine < 0 || keyword < 0 || prior < 0 {
			return fmt.Errorf("fusion weights must be non-negative")
		}
		r.cosineWeight = cosine
		r.keywordWeight = keyword
		r.priorWeight = prior
		return nil
	}
}

// WithEmbedTimeout bounds the query embedding call. Zero disables the bound.
func WithEmbedTimeout(d time.Duration) Option {
	return func(r *Retriever) error {
		r.embedTimeout = d
		return nil
	}
}

// WithStoreTimeout bounds each store read. Zero disables the bound.
func WithStoreTimeout(d time.Duration) Option {
	return func(r *Retriever) error {
		r.storeTimeout = d
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(
	chunkRepository storage.ChunkRepository,
	documentRepository storage.DocumentRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Retriever, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	priors, err := NewPriorEvaluator(DefaultRuleSet())
	if err != nil {
		return nil, err
	}

	r := &Retriever{
		chunkRepository:    chunkRepository,
		documentRepository: documentRepository,
		embedder:           embedder,
		priors:             priors,
		topK:               DefaultTopK,
		preselectLimit:     DefaultPreselectLimit,
		k1:                 DefaultK1,
		b:                  DefaultB,
		cosineWeight:       DefaultCosineWeight,
		keywordWeight:      DefaultKeywordWeight,
		priorWeight:        DefaultPriorWeight,
		embedTimeout:       DefaultEmbedTimeout,
		storeTimeout:       DefaultStoreTimeout,
		logger:             slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve ranks the tenant's chunks against the query and returns up
// to k results, at most one per document and one per URL. A k <= 0
// falls back to the configured default.
func (r *Retriever) Retrieve(ctx context.Context, tenant, query string, k int) ([]core.RetrievedChunk, error) {
	return r.RetrieveWithMonitor(ctx, tenant, query, k, nil)
}

// RetrieveWithMonitor runs the same pipeline and reports each stage to
// the monitor.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, tenant, query string, k int, monitor RetrievalMonitor) ([]core.RetrievedChunk, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if k <= 0 {
		k = r.topK
	}

	monitor.Start(query)

	// 1. Tokenize the query. An all-stopword query still proceeds:
	// keyword scores are zero and ranking rests on cosine and priors.
	queryTokens := Tokenize(query)
	businessQuery := HasBusinessHint(queryTokens)
	monitor.AfterTokenize(queryTokens, businessQuery)

	// 2. Embed the query.
	queryEmbedding, err := r.embedQuery(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingProvider, err)
	}

	// 3. Load the tenant corpus.
	chunks, err := r.listChunks(ctx, tenant)
	if err != nil {
		r.logger.Error("error listing chunks", "tenant", tenant, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	if len(chunks) == 0 {
		r.logger.Debug("no chunks indexed for tenant", "tenant", tenant)
		monitor.Finish(nil)
		return []core.RetrievedChunk{}, nil
	}

	// 4. Vector scoring over the whole corpus. Chunks without a usable
	// embedding are excluded rather than ranked at zero.
	scored := make([]core.ScoredChunk, 0, len(chunks))
	pool := make([]*core.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(chunk.Embedding) == 0 {
			r.logger.Debug("skipping chunk without embedding", "chunkId", chunk.Id)
			continue
		}
		if len(chunk.Embedding) != len(queryEmbedding) {
			r.logger.Warn("skipping chunk with mismatched embedding dimension",
				"chunkId", chunk.Id, "got", len(chunk.Embedding), "want", len(queryEmbedding))
			continue
		}
		chunk.Score = CosineSimilarity(queryEmbedding, chunk.Embedding)
		scored = append(scored, core.ScoredChunk{
			ChunkId:    chunk.Id,
			DocumentId: chunk.DocumentId,
			Text:       chunk.Text,
			Score:      chunk.Score,
		})
		pool = append(pool, chunk)
	}
	monitor.AfterVectorScoring(scored)
	if len(pool) == 0 {
		monitor.Finish(nil)
		return []core.RetrievedChunk{}, nil
	}

	// 5. Preselect the top candidates by cosine. Stable sort keeps
	// storage order among equal scores deterministic.
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})
	limit := r.preselectLimit
	if limit > len(pool) {
		limit = len(pool)
	}
	pool = pool[:limit]
	preselected := make([]core.ScoredChunk, len(pool))
	for i, chunk := range pool {
		preselected[i] = core.ScoredChunk{
			ChunkId:    chunk.Id,
			DocumentId: chunk.DocumentId,
			Text:       chunk.Text,
			Score:      chunk.Score,
		}
	}
	monitor.AfterPreselect(preselected)

	// 6. Keyword scoring over the preselected pool only.
	poolTokens := make([][]string, len(pool))
	for i, chunk := range pool {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		poolTokens[i] = Tokenize(chunk.Text)
	}
	keywordScores := BM25Scores(queryTokens, poolTokens, r.k1, r.b)
	monitor.AfterKeywordScoring(keywordScores)

	// 7. Load the owning documents for URL and title priors.
	documents, err := r.getDocuments(ctx, pool)
	if err != nil {
		r.logger.Error("error loading documents for candidates", "tenant", tenant, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	// 8. Fuse the three signals. A chunk whose document row is missing
	// gets an empty URL and title rather than being dropped.
	fused := make([]core.ScoredChunk, len(pool))
	for i, chunk := range pool {
		var url, title string
		if doc, ok := documents[chunk.DocumentId]; ok {
			url = doc.URL
			title = doc.Title
		}
		prior := r.priors.Evaluate(queryTokens, url, title, businessQuery)
		fused[i] = core.ScoredChunk{
			ChunkId:    chunk.Id,
			DocumentId: chunk.DocumentId,
			Text:       chunk.Text,
			Score: r.cosineWeight*chunk.Score +
				r.keywordWeight*keywordScores[i] +
				r.priorWeight*prior,
		}
	}
	monitor.AfterFusion(fused)

	// 9. Keep the best chunk per document, then dedupe by URL keeping
	// the higher score, then cut to k. Non-positive scores are dropped.
	results := r.selectResults(fused, documents, k)
	monitor.Finish(results)
	return results, nil
}

func (r *Retriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if r.embedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.embedTimeout)
		defer cancel()
	}
	return r.embedder.EmbedText(ctx, query)
}

func (r *Retriever) listChunks(ctx context.Context, tenant string) ([]*core.Chunk, error) {
	if r.storeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.storeTimeout)
		defer cancel()
	}
	return r.chunkRepository.ListChunks(ctx, tenant)
}

func (r *Retriever) getDocuments(ctx context.Context, pool []*core.Chunk) (map[core.ID]*core.Document, error) {
	seen := make(map[core.ID]struct{}, len(pool))
	ids := make([]core.ID, 0, len(pool))
	for _, chunk := range pool {
		if _, dup := seen[chunk.DocumentId]; dup {
			continue
		}
		seen[chunk.DocumentId] = struct{}{}
		ids = append(ids, chunk.DocumentId)
	}

	if r.storeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.storeTimeout)
		defer cancel()
	}
	docs, err := r.documentRepository.GetDocuments(ctx, ids...)
	if err != nil {
		return nil, err
	}

	byID := make(map[core.ID]*core.Document, len(docs))
	for _, doc := range docs {
		byID[doc.Id] = doc
	}
	return byID, nil
}

// selectResults aggregates fused chunk scores into the final ranking:
// one chunk per document, one result per URL, descending by score,
// truncated to k.
func (r *Retriever) selectResults(fused []core.ScoredChunk, documents map[core.ID]*core.Document, k int) []core.RetrievedChunk {
	bestPerDoc := make(map[core.ID]core.ScoredChunk, len(fused))
	docOrder := make([]core.ID, 0, len(fused))
	for _, sc := range fused {
		best, ok := bestPerDoc[sc.DocumentId]
		if !ok {
			docOrder = append(docOrder, sc.DocumentId)
			bestPerDoc[sc.DocumentId] = sc
			continue
		}
		if sc.Score > best.Score {
			bestPerDoc[sc.DocumentId] = sc
		}
	}

	candidates := make([]core.RetrievedChunk, 0, len(docOrder))
	for _, docID := range docOrder {
		sc := bestPerDoc[docID]
		var url, title string
		if doc, ok := documents[docID]; ok {
			url = doc.URL
			title = doc.Title
		}
		candidates = append(candidates, core.RetrievedChunk{
			ChunkId:    sc.ChunkId,
			DocumentId: sc.DocumentId,
			Text:       sc.Text,
			URL:        url,
			Title:      title,
			Score:      sc.Score,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	results := make([]core.RetrievedChunk, 0, k)
	seenURL := make(map[string]struct{}, k)
	for _, c := range candidates {
		if c.Score <= 0 {
			break
		}
		if c.URL != "" {
			if _, dup := seenURL[c.URL]; dup {
				continue
			}
			seenURL[c.URL] = struct{}{}
		}
		results = append(results, c)
		if len(results) == k {
			break
		}
	}
	return results
}
