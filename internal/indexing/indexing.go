// Package indexing synchronizes the search index with committed writes.
//
// Writers suspend indexing for the lifetime of a request with Suspend, add
// references of committed rows to the returned Batch, and flush them with
// Resume once the outermost operation finishes. Nothing is indexed for a
// rolled back transaction because references are only enqueued after commit.
package indexing

import (
	"context"
	"sync"

	"github.com/termvault/termvault/internal/logger"
)

// Ref identifies one stored row to reindex.
type Ref struct {
	Kind string
	ID   int64
}

// Indexer receives the rows to reindex.
type Indexer interface {
	Reindex(ctx context.Context, refs []Ref) error
}

// LogIndexer writes every reindex request to the log. It stands in for a real
// search backend.
type LogIndexer struct {
	Log *logger.Logger
}

func (l LogIndexer) Reindex(ctx context.Context, refs []Ref) error {
	log := l.Log
	if log == nil {
		log = logger.Nop()
	}
	for _, ref := range refs {
		log.Debug().Str("kind", ref.Kind).Int64("id", ref.ID).Msg("reindex")
	}
	return nil
}

// MemoryIndexer records reindex calls. Safe for concurrent use.
type MemoryIndexer struct {
	mu    sync.Mutex
	calls [][]Ref
	err   error
}

// FailWith makes subsequent Reindex calls return err.
func (m *MemoryIndexer) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemoryIndexer) Reindex(ctx context.Context, refs []Ref) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, append([]Ref(nil), refs...))
	return nil
}

// Calls returns a copy of every batch received so far.
func (m *MemoryIndexer) Calls() [][]Ref {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]Ref, len(m.calls))
	copy(out, m.calls)
	return out
}

// Refs returns every ref received so far, flattened.
func (m *MemoryIndexer) Refs() []Ref {
	var out []Ref
	for _, call := range m.Calls() {
		out = append(out, call...)
	}
	return out
}

// Batch collects refs for one request.
type Batch struct {
	indexer Indexer

	mu    sync.Mutex
	depth int
	seen  map[Ref]bool
	refs  []Ref
}

type batchKey struct{}

// Suspend returns a context carrying a batch for indexer. Nested calls reuse
// the batch of the outer call and only the outermost Resume flushes.
func Suspend(ctx context.Context, indexer Indexer) (context.Context, *Batch) {
	if b, ok := ctx.Value(batchKey{}).(*Batch); ok {
		b.mu.Lock()
		b.depth++
		b.mu.Unlock()
		return ctx, b
	}

	b := &Batch{indexer: indexer, depth: 1, seen: map[Ref]bool{}}
	return context.WithValue(ctx, batchKey{}, b), b
}

// FromContext returns the batch attached to ctx, if any.
func FromContext(ctx context.Context) (*Batch, bool) {
	b, ok := ctx.Value(batchKey{}).(*Batch)
	return b, ok
}

// Suspended reports whether indexing is suspended for ctx.
func Suspended(ctx context.Context) bool {
	_, ok := FromContext(ctx)
	return ok
}

// Enqueue adds refs, ignoring ones already queued and zero IDs.
func (b *Batch) Enqueue(refs ...Ref) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ref := range refs {
		if ref.ID == 0 || b.seen[ref] {
			continue
		}
		b.seen[ref] = true
		b.refs = append(b.refs, ref)
	}
}

// Pending returns the refs queued so far.
func (b *Batch) Pending() []Ref {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Ref(nil), b.refs...)
}

// Resume ends one level of suspension. At the outermost level the queued refs
// are handed to the indexer and the batch is cleared. It returns the number
// of refs flushed.
func (b *Batch) Resume(ctx context.Context) (int, error) {
	b.mu.Lock()
	b.depth--
	if b.depth > 0 {
		b.mu.Unlock()
		return 0, nil
	}
	refs := b.refs
	b.refs = nil
	b.seen = map[Ref]bool{}
	b.mu.Unlock()

	if len(refs) == 0 || b.indexer == nil {
		return 0, nil
	}
	if err := b.indexer.Reindex(context.WithoutCancel(ctx), refs); err != nil {
		return 0, err
	}
	return len(refs), nil
}
