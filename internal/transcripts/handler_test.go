package transcripts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/bleak/internal/transcripts"
	"github.com/JaimeStill/bleak/internal/workflow"
	"github.com/JaimeStill/bleak/pkg/storage"
)

type mockSystem struct {
	archiveFn func(ctx context.Context, threadID string) (*transcripts.Transcript, error)
	findFn    func(ctx context.Context, threadID string) (*transcripts.Transcript, error)
	listFn    func(ctx context.Context, marker string, maxResults int32) (*storage.BlobList, error)
	deleteFn  func(ctx context.Context, threadID string) error
}

func (m *mockSystem) Handler() *transcripts.Handler {
	return transcripts.NewHandler(m, discard, 50)
}

func (m *mockSystem) Archive(ctx context.Context, threadID string) (*transcripts.Transcript, error) {
	return m.archiveFn(ctx, threadID)
}

func (m *mockSystem) ArchiveCheckpoint(ctx context.Context, cp *workflow.Checkpoint) (*transcripts.Transcript, error) {
	return m.archiveFn(ctx, cp.ThreadID)
}

func (m *mockSystem) Find(ctx context.Context, threadID string) (*transcripts.Transcript, error) {
	return m.findFn(ctx, threadID)
}

func (m *mockSystem) Delete(ctx context.Context, threadID string) error {
	return m.deleteFn(ctx, threadID)
}

func (m *mockSystem) List(ctx context.Context, marker string, maxResults int32) (*storage.BlobList, error) {
	return m.listFn(ctx, marker, maxResults)
}

func setupMux(h *transcripts.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return mux
}

func TestHandlerArchive(t *testing.T) {
	var captured string
	sys := &mockSystem{
		archiveFn: func(_ context.Context, id string) (*transcripts.Transcript, error) {
			captured = id
			return &transcripts.Transcript{ThreadID: id, Finished: true}, nil
		},
	}
	mux := setupMux(sys.Handler())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/threads/t1/transcript", nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if captured != "t1" {
		t.Errorf("thread id = %q, want t1", captured)
	}

	var got transcripts.Transcript
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Finished {
		t.Error("expected finished transcript")
	}
}

func TestHandlerFind(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"found", nil, http.StatusOK},
		{"missing", transcripts.ErrNotFound, http.StatusNotFound},
		{"disabled", storage.ErrDisabled, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{
				findFn: func(_ context.Context, id string) (*transcripts.Transcript, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &transcripts.Transcript{ThreadID: id}, nil
				},
			}
			mux := setupMux(sys.Handler())

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", "/threads/t1/transcript", nil))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestHandlerList(t *testing.T) {
	var gotMax int32
	sys := &mockSystem{
		listFn: func(_ context.Context, _ string, maxResults int32) (*storage.BlobList, error) {
			gotMax = maxResults
			return &storage.BlobList{Blobs: []storage.BlobMeta{{Key: "threads/t1.json"}}}, nil
		},
	}
	mux := setupMux(sys.Handler())

	t.Run("default max results", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/transcripts", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if gotMax != 50 {
			t.Errorf("max results = %d, want 50", gotMax)
		}
	})

	t.Run("invalid max results", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/transcripts?max_results=abc", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerDelete(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"missing", transcripts.ErrNotFound, http.StatusNotFound},
		{"storage disabled", storage.ErrDisabled, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			sys := &mockSystem{
				deleteFn: func(_ context.Context, threadID string) error {
					got = threadID
					return tt.err
				},
			}

			rec := httptest.NewRecorder()
			setupMux(sys.Handler()).ServeHTTP(rec, httptest.NewRequest("DELETE", "/threads/t9/transcript", nil))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if got != "t9" {
				t.Errorf("thread id = %q, want t9", got)
			}
		})
	}
}
