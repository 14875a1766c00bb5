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


package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/ivesna/ai"
	"github.com/poiesic/ivesna/core"
	"github.com/poiesic/ivesna/storage"
)

// Page is one crawled page handed to the pipeline.
type Page struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Lang  string `json:"lang,omitempty"`
	Text  string `json:"text"`
}

// Report summarizes one ingestion batch.
type Report struct {
	Ingested int // pages stored with their chunks
	Skipped  int // pages whose content was already indexed unchanged
	Failed   int // pages that errored; details are in the log
	Chunks   int // chunks written across all ingested pages
}

// Pipeline chunks, embeds and stores crawled pages.
// Pages in a batch are processed concurrently by a worker pool.
type Pipeline struct {
	documentRepository storage.DocumentRepository
	chunkRepository    storage.ChunkRepository
	embedder           ai.Embedder
	chunker            *Chunker
	pool               *ants.Pool
	logger             *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithChunker replaces the default word-window chunker.
func WithChunker(size, overlap int) Option {
	return func(p *Pipeline) error {
		chunker, err := NewChunker(size, overlap)
		if err != nil {
			return err
		}
		p.chunker = chunker
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	documentRepository storage.DocumentRepository,
	chunkRepository storage.ChunkRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		documentRepository: documentRepository,
		chunkRepository:    chunkRepository,
		embedder:           embedder,
		chunker:            DefaultChunker(),
		pool:               pool,
		logger:             slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}

	return p, nil
}

// IngestPages stores a batch of pages for the tenant. Each page is
// chunked, embedded and persisted independently; a failing page is
// logged and counted without aborting the rest of the batch. A page
// whose content fingerprint already exists under its URL is skipped.
func (p *Pipeline) IngestPages(ctx context.Context, tenant string, pages []Page) (*Report, error) {
	if tenant == "" {
		return nil, storage.ErrInvalidQuery
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		report Report
	)

	for _, page := range pages {
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()

			outcome, chunkCount, err := p.ingestPage(ctx, tenant, page)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				p.logger.Error("error ingesting page", "url", page.URL, "err", err)
				report.Failed++
			case outcome == pageSkipped:
				report.Skipped++
			default:
				report.Ingested++
				report.Chunks += chunkCount
			}
		})
		if err != nil {
			wg.Done()
			p.logger.Error("error submitting page to worker pool", "url", page.URL, "err", err)
			mu.Lock()
			report.Failed++
			mu.Unlock()
		}
	}

	wg.Wait()
	return &report, ctx.Err()
}

type pageOutcome int

const (
	pageStored pageOutcome = iota
	pageSkipped
)

func (p *Pipeline) ingestPage(ctx context.Context, tenant string, page Page) (pageOutcome, int, error) {
	if err := ctx.Err(); err != nil {
		return pageStored, 0, err
	}
	if err := core.ValidateDocument(&core.Document{Tenant: tenant, URL: page.URL}); err != nil {
		return pageStored, 0, err
	}

	fingerprint := core.IDFromContent(page.Text)

	// Skip pages whose content has not changed since the last crawl.
	existing, err := p.documentRepository.FindDocumentsByURL(ctx, tenant, page.URL)
	if err != nil {
		return pageStored, 0, err
	}
	for _, doc := range existing {
		if doc.Fingerprint == fingerprint {
			p.logger.Debug("skipping unchanged page", "url", page.URL)
			return pageSkipped, 0, nil
		}
	}

	texts := p.chunker.Split(page.Text)
	if len(texts) == 0 {
		p.logger.Warn("skipping page without text", "url", page.URL)
		return pageSkipped, 0, nil
	}

	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return pageStored, 0, err
	}
	if len(embeddings) != len(texts) {
		return pageStored, 0, ai.ErrEmbeddingCountMismatch
	}

	docs, err := p.documentRepository.AddDocuments(ctx, &core.Document{
		Tenant:      tenant,
		URL:         page.URL,
		Title:       page.Title,
		Lang:        page.Lang,
		Fingerprint: fingerprint,
	})
	if err != nil {
		return pageStored, 0, err
	}
	doc := docs[0]

	chunks := make([]*core.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = &core.Chunk{
			DocumentId: doc.Id,
			Tenant:     tenant,
			Ordinal:    i,
			Text:       text,
			Embedding:  embeddings[i],
		}
	}
	if _, err := p.chunkRepository.AddChunks(ctx, chunks...); err != nil {
		return pageStored, 0, err
	}

	return pageStored, len(chunks), nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
