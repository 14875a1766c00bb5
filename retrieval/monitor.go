package retrieval

import "github.com/poiesic/ivesna/core"

// RetrievalMonitor provides hooks to observe the retrieval pipeline.
// Implement this interface to track intermediate stages and scores.
type RetrievalMonitor interface {
	Start(query string)
	AfterTokenize(tokens []string, businessQuery bool)
	AfterVectorScoring(scored []core.ScoredChunk)
	AfterPreselect(pool []core.ScoredChunk)
	AfterKeywordScoring(scores []float64)
	AfterFusion(fused []core.ScoredChunk)
	Finish(results []core.RetrievedChunk)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                          {}
func (n *noopMonitor) AfterTokenize(_ []string, _ bool)        {}
func (n *noopMonitor) AfterVectorScoring(_ []core.ScoredChunk) {}
func (n *noopMonitor) AfterPreselect(_ []core.ScoredChunk)     {}
func (n *noopMonitor) AfterKeywordScoring(_ []float64)         {}
func (n *noopMonitor) AfterFusion(_ []core.ScoredChunk)        {}
func (n *noopMonitor) Finish(_ []core.RetrievedChunk)          {}
