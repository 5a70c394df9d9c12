package retrieval

import (
	"github.com/poiesic/shiyun/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string, mode Mode)
	AfterKeywordSearch(ids []core.ID)
	AfterVectorSearch(matches []core.SimilarityMatch)
	VectorSearchDegraded(err error)
	AfterPoemRetrieval(poems []*core.Poem)
	Finish(hits []*core.PoemHit)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ Mode)                      {}
func (n *noopMonitor) AfterKeywordSearch(_ []core.ID)              {}
func (n *noopMonitor) AfterVectorSearch(_ []core.SimilarityMatch)  {}
func (n *noopMonitor) VectorSearchDegraded(_ error)                {}
func (n *noopMonitor) AfterPoemRetrieval(_ []*core.Poem)           {}
func (n *noopMonitor) Finish(_ []*core.PoemHit)                    {}
