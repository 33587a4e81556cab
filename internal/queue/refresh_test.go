package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/ossgrants/grantgraph/backend/internal/ingest"
)

type fakeRefresher struct {
	err   error
	calls int
}

func (f *fakeRefresher) Refresh(ctx context.Context) error {
	f.calls++
	return f.err
}

func TestProcessRefreshMessage(t *testing.T) {
	refresher := &fakeRefresher{}
	msg := `{"message":"manual refresh","correlation_id":"abc123","requested_at":"2024-01-01T00:00:00Z"}`

	if err := ProcessRefreshMessage(context.Background(), refresher, msg); err != nil {
		t.Fatalf("ProcessRefreshMessage() error = %v", err)
	}
	if refresher.calls != 1 {
		t.Fatalf("expected 1 refresh call, got %d", refresher.calls)
	}
}

func TestProcessRefreshMessage_BusyIsDropped(t *testing.T) {
	refresher := &fakeRefresher{err: ingest.ErrBusy}

	if err := ProcessRefreshMessage(context.Background(), refresher, `{"correlation_id":"abc"}`); err != nil {
		t.Fatalf("expected busy job to be dropped, got %v", err)
	}
}

func TestProcessRefreshMessage_FailurePropagates(t *testing.T) {
	want := errors.New("graph unavailable")
	refresher := &fakeRefresher{err: want}

	err := ProcessRefreshMessage(context.Background(), refresher, `{"correlation_id":"abc"}`)
	if !errors.Is(err, want) {
		t.Fatalf("expected wrapped refresh error, got %v", err)
	}
}

func TestProcessRefreshMessage_BadPayload(t *testing.T) {
	refresher := &fakeRefresher{}

	if err := ProcessRefreshMessage(context.Background(), refresher, "not json"); err == nil {
		t.Fatal("expected unmarshal error")
	}
	if refresher.calls != 0 {
		t.Fatal("expected no refresh call for bad payload")
	}
}
