package service

import (
	"context"
	"errors"
	"sync"

	"signal-desk/internal/dto"
	"signal-desk/internal/model"
	"signal-desk/pkg/notifier"
)

type fakeDispatcher struct {
	mu   sync.Mutex
	msgs []notifier.Message
}

func (f *fakeDispatcher) Dispatch(msg notifier.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
}

func (f *fakeDispatcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

type fakeJournal struct {
	mu      sync.Mutex
	entries []dto.TradeEntry
	err     error
}

func (f *fakeJournal) Append(ctx context.Context, entry dto.TradeEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

type failingPortfolio struct{}

var errStoreDown = errors.New("store down")

func (failingPortfolio) Buy(ctx context.Context, ticker string, quantity float64) (float64, error) {
	return 0, errStoreDown
}

func (failingPortfolio) Sell(ctx context.Context, ticker string, quantity float64) (float64, bool, error) {
	return 0, false, errStoreDown
}

func (failingPortfolio) Get(ctx context.Context, ticker string) (float64, bool, error) {
	return 0, false, errStoreDown
}

func (failingPortfolio) All(ctx context.Context) (map[string]float64, error) {
	return nil, errStoreDown
}

type fakeEmbedder struct {
	fail map[string]bool
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.fail[text] {
		return nil, errors.New("embedding quota exceeded")
	}
	return []float32{float32(len(text)), 1}, nil
}

// mapCaseGraph mimics MERGE by id.
type mapCaseGraph struct {
	nodes   map[string]model.CaseRecord
	batches [][]string
	// failOn is the 1-based UpsertCases call that returns an error
	failOn int
	calls  int
}

func newMapCaseGraph() *mapCaseGraph {
	return &mapCaseGraph{nodes: map[string]model.CaseRecord{}}
}

func (m *mapCaseGraph) EnsureSchema(ctx context.Context) error { return nil }

func (m *mapCaseGraph) UpsertCases(ctx context.Context, cases []model.CaseRecord) error {
	m.calls++
	if m.calls == m.failOn {
		return errors.New("write failed")
	}
	ids := make([]string, 0, len(cases))
	for _, c := range cases {
		m.nodes[c.ID] = c
		ids = append(ids, c.ID)
	}
	m.batches = append(m.batches, ids)
	return nil
}
