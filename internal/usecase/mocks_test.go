package usecase

import (
	"context"
	"sync"

	"horde-image-client/internal/domain"
	"horde-image-client/internal/domain/model"
	"horde-image-client/internal/domain/ports/adapter"
	"horde-image-client/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// mockJobRepo is a small in-memory implementation used by unit tests.
type mockJobRepo struct {
	mu   sync.Mutex
	job  *model.JobInProgress
	meta map[string]*model.JobMetadata

	putErr error // used by tests to simulate storage failures
}

func newMockJobRepo() *mockJobRepo {
	return &mockJobRepo{meta: make(map[string]*model.JobMetadata)}
}

func (m *mockJobRepo) Current(ctx context.Context) (*model.JobInProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.job == nil {
		return nil, domain.ErrNotFound
	}
	cp := *m.job
	return &cp, nil
}

func (m *mockJobRepo) Put(ctx context.Context, job *model.JobInProgress) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.job != nil {
		return domain.ErrJobInFlight
	}
	cp := *job
	m.job = &cp
	return nil
}

func (m *mockJobRepo) Update(ctx context.Context, job *model.JobInProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.job == nil {
		return domain.ErrNotFound
	}
	cp := *job
	m.job = &cp
	return nil
}

func (m *mockJobRepo) Delete(ctx context.Context, requestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.job = nil
	delete(m.meta, requestID)
	return nil
}

func (m *mockJobRepo) StoreMetadata(ctx context.Context, meta *model.JobMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *meta
	m.meta[meta.RequestID] = &cp
	return nil
}

func (m *mockJobRepo) Metadata(ctx context.Context, requestID string) (*model.JobMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta, ok := m.meta[requestID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *meta
	return &cp, nil
}

// mockOptionsRepo keeps one options record in memory.
type mockOptionsRepo struct {
	mu   sync.Mutex
	opts *model.GenerationOptions
}

func (m *mockOptionsRepo) Get(ctx context.Context) (*model.GenerationOptions, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.opts == nil {
		return nil, domain.ErrNotFound
	}
	cp := *m.opts
	return &cp, nil
}

func (m *mockOptionsRepo) Store(ctx context.Context, opts *model.GenerationOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *opts
	m.opts = &cp
	return nil
}

// mockHorde scripts the adapter; every call is counted so tests can assert
// "no network call was made".
type mockHorde struct {
	mu sync.Mutex

	GenerateFunc func(ctx context.Context, opts *model.GenerationOptions) (*model.JobInProgress, error)
	StatusFunc   func(ctx context.Context, requestID string) (*model.StatusCheck, error)
	ResultFunc   func(ctx context.Context, requestID string) (*adapter.RequestStatusFull, error)
	DownloadFunc func(ctx context.Context, url string) ([]byte, error)

	generateCalls int
	statusCalls   int
	cancelCalls   int
	resultCalls   int
	downloadCalls int
}

func (m *mockHorde) CurrentUser(ctx context.Context) (*model.UserDetails, error) {
	return &model.UserDetails{Username: "tester"}, nil
}

func (m *mockHorde) ListModels(ctx context.Context) ([]model.ActiveModel, error) {
	return []model.ActiveModel{{Name: "stable_diffusion", Type: "image"}}, nil
}

func (m *mockHorde) GenerateImage(ctx context.Context, opts *model.GenerationOptions) (*model.JobInProgress, error) {
	m.mu.Lock()
	m.generateCalls++
	m.mu.Unlock()
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, opts)
	}
	return &model.JobInProgress{RequestID: "req-1", Kudos: 10}, nil
}

func (m *mockHorde) CheckStatus(ctx context.Context, requestID string) (*model.StatusCheck, error) {
	m.mu.Lock()
	m.statusCalls++
	m.mu.Unlock()
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, requestID)
	}
	return &model.StatusCheck{IsPossible: true}, nil
}

func (m *mockHorde) CancelJob(ctx context.Context, requestID string) error {
	m.mu.Lock()
	m.cancelCalls++
	m.mu.Unlock()
	return nil
}

func (m *mockHorde) FetchResult(ctx context.Context, requestID string) (*adapter.RequestStatusFull, error) {
	m.mu.Lock()
	m.resultCalls++
	m.mu.Unlock()
	if m.ResultFunc != nil {
		return m.ResultFunc(ctx, requestID)
	}
	return &adapter.RequestStatusFull{
		Generations: []model.Generation{{
			ID: "gen-1", IMG: "https://img.example/1.webp", Seed: "42",
			WorkerID: "w-1", WorkerName: "worker one", Model: "stable_diffusion",
		}},
		Kudos: 12,
	}, nil
}

func (m *mockHorde) DownloadImage(ctx context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	m.downloadCalls++
	m.mu.Unlock()
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, url)
	}
	return []byte{0x52, 0x49, 0x46, 0x46}, nil
}

func (m *mockHorde) calls() (generate, status, cancel, result, download int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generateCalls, m.statusCalls, m.cancelCalls, m.resultCalls, m.downloadCalls
}

// mockHistoryRepo collects saved entries.
type mockHistoryRepo struct {
	mu      sync.Mutex
	entries []model.HistoryEntry
}

func (m *mockHistoryRepo) Save(ctx context.Context, tx repository.Tx, entry *model.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockHistoryRepo) ListRecent(ctx context.Context, limit int) ([]model.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.HistoryEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

// mockTxManager runs the callback without a real transaction.
type mockTxManager struct{}

func (mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}
