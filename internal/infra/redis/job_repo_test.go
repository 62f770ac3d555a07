package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"horde-image-client/internal/domain"
	"horde-image-client/internal/domain/model"
)

// fakeClient is an in-memory RedisClient for unit tests.
type fakeClient struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeClient() *fakeClient {
	return &fakeClient{data: make(map[string]string)}
}

func (f *fakeClient) Ping(context.Context) error { return nil }

func (f *fakeClient) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = string(value.([]byte))
	return nil
}

func (f *fakeClient) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = string(value.([]byte))
	return true, nil
}

func (f *fakeClient) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", ErrNil
	}
	return v, nil
}

func (f *fakeClient) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeClient) Close() error { return nil }

func TestJobRepo_SingleSlot(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepo(newFakeClient())

	if _, err := repo.Current(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("empty slot: expected ErrNotFound, got %v", err)
	}

	job := &model.JobInProgress{RequestID: "req-1", Kudos: 10, SubmittedAt: time.Now()}
	if err := repo.Put(ctx, job); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Second Put must lose, even for a different request.
	other := &model.JobInProgress{RequestID: "req-2"}
	if err := repo.Put(ctx, other); !errors.Is(err, domain.ErrJobInFlight) {
		t.Fatalf("expected ErrJobInFlight, got %v", err)
	}

	got, err := repo.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got.RequestID != "req-1" || got.Kudos != 10 {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}

	if err := repo.Delete(ctx, "req-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Current(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("slot must be free after delete, got %v", err)
	}
	// Deleting an empty slot is not an error.
	if err := repo.Delete(ctx, "req-1"); err != nil {
		t.Fatalf("idempotent delete: %v", err)
	}
}

func TestJobRepo_UpdateRequiresOccupiedSlot(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepo(newFakeClient())

	job := &model.JobInProgress{RequestID: "req-1"}
	if err := repo.Update(ctx, job); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("update of empty slot: expected ErrNotFound, got %v", err)
	}

	_ = repo.Put(ctx, job)
	job.FetchAttempts = 2
	if err := repo.Update(ctx, job); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := repo.Current(ctx)
	if got.FetchAttempts != 2 {
		t.Fatalf("update not persisted: %+v", got)
	}
}

func TestJobRepo_MetadataRoundtrip(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepo(newFakeClient())

	if _, err := repo.Metadata(ctx, "req-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	meta := &model.JobMetadata{RequestID: "req-1", Width: 832, Height: 512}
	if err := repo.StoreMetadata(ctx, meta); err != nil {
		t.Fatalf("StoreMetadata: %v", err)
	}
	got, err := repo.Metadata(ctx, "req-1")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if got.Width != 832 || got.Height != 512 {
		t.Fatalf("metadata mismatch: %+v", got)
	}

	// Deleting the job clears its metadata too.
	_ = repo.Put(ctx, &model.JobInProgress{RequestID: "req-1"})
	_ = repo.Delete(ctx, "req-1")
	if _, err := repo.Metadata(ctx, "req-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("metadata must be deleted with the job, got %v", err)
	}
}

func TestOptionsRepo_Roundtrip(t *testing.T) {
	ctx := context.Background()
	repo := NewOptionsRepo(newFakeClient())

	if _, err := repo.Get(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on fresh store, got %v", err)
	}

	opts := model.DefaultGenerationOptions()
	opts.Prompt = "sunflowers"
	opts.Karras = true
	if err := repo.Store(ctx, opts); err != nil {
		t.Fatalf("Store: %v", err)
	}
	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Prompt != "sunflowers" || !got.Karras {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
}
