package usecase

import (
	"context"
	"errors"
	"testing"

	"horde-image-client/internal/domain"
	"horde-image-client/internal/domain/model"
	"horde-image-client/internal/domain/ports/adapter"
)

func newMaterializeFixture() (*mockJobRepo, *mockHorde, *mockHistoryRepo, *ResultSlot, *materializeUC) {
	jobs := newMockJobRepo()
	horde := &mockHorde{}
	history := &mockHistoryRepo{}
	results := NewResultSlot()
	opts := &mockOptionsRepo{}
	_ = opts.Store(context.Background(), testOptions())
	uc := NewMaterializeUseCase(horde, jobs, opts, history, mockTxManager{}, results, testLogger())
	return jobs, horde, history, results, uc
}

func TestMaterializeUC_HappyPath(t *testing.T) {
	ctx := context.Background()
	jobs, horde, history, results, uc := newMaterializeFixture()

	job := &model.JobInProgress{RequestID: "req-1"}
	_ = jobs.StoreMetadata(ctx, &model.JobMetadata{RequestID: "req-1", Width: 640, Height: 448})

	res, err := uc.Materialize(ctx, job)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if res.ID != "gen-1" || res.Seed != "42" || res.WorkerName != "worker one" {
		t.Fatalf("server attributes not carried over: %+v", res)
	}
	if res.Width != 640 || res.Height != 448 {
		t.Fatalf("cached dimensions not applied: %dx%d", res.Width, res.Height)
	}
	if res.Kudos != 12 {
		t.Fatalf("kudos not carried over: %v", res.Kudos)
	}
	if len(res.Image) == 0 {
		t.Fatal("image bytes missing")
	}
	if results.Current() != res {
		t.Fatal("result not published to the slot")
	}
	if _, _, _, result, download := horde.calls(); result != 1 || download != 1 {
		t.Fatalf("expected one fetch and one download, got %d/%d", result, download)
	}

	entries, _ := history.ListRecent(ctx, 10)
	if len(entries) != 1 || entries[0].RequestID != "req-1" {
		t.Fatalf("history entry missing: %+v", entries)
	}
	if entries[0].Prompt != "a lighthouse at dusk" {
		t.Fatalf("history prompt not filled from stored options: %+v", entries[0])
	}
}

func TestMaterializeUC_FirstGenerationOnly(t *testing.T) {
	ctx := context.Background()
	jobs, horde, _, _, uc := newMaterializeFixture()
	horde.ResultFunc = func(ctx context.Context, requestID string) (*adapter.RequestStatusFull, error) {
		return &adapter.RequestStatusFull{Generations: []model.Generation{
			{ID: "gen-a", IMG: "https://img.example/a"},
			{ID: "gen-b", IMG: "https://img.example/b"},
		}}, nil
	}
	_ = jobs.StoreMetadata(ctx, &model.JobMetadata{RequestID: "req-1"})

	res, err := uc.Materialize(ctx, &model.JobInProgress{RequestID: "req-1"})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if res.ID != "gen-a" {
		t.Fatalf("expected first generation, got %q", res.ID)
	}
	if _, _, _, _, download := horde.calls(); download != 1 {
		t.Fatalf("only the first generation must be downloaded, got %d", download)
	}
}

func TestMaterializeUC_EmptyGenerations(t *testing.T) {
	ctx := context.Background()
	_, horde, _, results, uc := newMaterializeFixture()
	horde.ResultFunc = func(ctx context.Context, requestID string) (*adapter.RequestStatusFull, error) {
		return &adapter.RequestStatusFull{}, nil
	}

	_, err := uc.Materialize(ctx, &model.JobInProgress{RequestID: "req-1"})
	if !errors.Is(err, domain.ErrEmptyGeneration) {
		t.Fatalf("expected ErrEmptyGeneration, got %v", err)
	}
	if results.Current() != nil {
		t.Fatal("no Result may be constructed on failure")
	}
}

func TestMaterializeUC_EmptyImageBody(t *testing.T) {
	ctx := context.Background()
	_, horde, _, results, uc := newMaterializeFixture()
	horde.DownloadFunc = func(ctx context.Context, url string) ([]byte, error) {
		return nil, nil
	}

	_, err := uc.Materialize(ctx, &model.JobInProgress{RequestID: "req-1"})
	if !errors.Is(err, domain.ErrEmptyImage) {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
	if results.Current() != nil {
		t.Fatal("no Result may be constructed on failure")
	}
}

func TestMaterializeUC_PublishReleasesPrevious(t *testing.T) {
	ctx := context.Background()
	jobs, _, _, results, uc := newMaterializeFixture()
	_ = jobs.StoreMetadata(ctx, &model.JobMetadata{RequestID: "req-1"})

	prev := &model.Result{Image: []byte{9}}
	results.Publish(prev)

	res, err := uc.Materialize(ctx, &model.JobInProgress{RequestID: "req-1"})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if !prev.Released() {
		t.Fatal("previous result must be released on publish")
	}
	if res.Released() {
		t.Fatal("new result must stay live")
	}
}
