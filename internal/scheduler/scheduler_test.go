package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/drive-intranet/internal/mocks"
	"golang.org/x/oauth2"
)

// MockRefresher is a simple mock for testing
type MockRefresher struct {
	calls int32
	err   error
	lastT oauth2.TokenSource
	mu    sync.Mutex
}

func (m *MockRefresher) Refresh(ctx context.Context, ts oauth2.TokenSource) (int, error) {
	atomic.AddInt32(&m.calls, 1)
	m.mu.Lock()
	m.lastT = ts
	m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return 42, nil
}

func (m *MockRefresher) Calls() int {
	return int(atomic.LoadInt32(&m.calls))
}

func TestNew(t *testing.T) {
	interval := 1 * time.Hour
	scheduler := New(interval, &mocks.MockTokenProvider{}, &MockRefresher{})
	if scheduler == nil {
		t.Fatal("Expected scheduler to be created")
	}
	if scheduler.interval != interval {
		t.Errorf("Expected interval %v, got %v", interval, scheduler.interval)
	}
}

func TestScheduler_RunRefresh(t *testing.T) {
	refresher := &MockRefresher{}
	scheduler := New(1*time.Hour, &mocks.MockTokenProvider{}, refresher)

	if err := scheduler.RunRefresh(); err != nil {
		t.Errorf("RunRefresh failed: %v", err)
	}
	if refresher.Calls() != 1 {
		t.Errorf("Expected 1 refresh, got %d", refresher.Calls())
	}

	tok, err := refresher.lastT.Token()
	if err != nil || tok.AccessToken != "mock-token" {
		t.Errorf("Expected session token to be passed through, got %v (%v)", tok, err)
	}
}

func TestScheduler_RunRefresh_NoSession(t *testing.T) {
	refresher := &MockRefresher{}
	tokens := &mocks.MockTokenProvider{
		LatestTokenSourceFunc: func() (oauth2.TokenSource, bool) { return nil, false },
	}
	scheduler := New(1*time.Hour, tokens, refresher)

	err := scheduler.RunRefresh()
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession, got %v", err)
	}
	if refresher.Calls() != 0 {
		t.Errorf("Expected no refresh, got %d", refresher.Calls())
	}
}

func TestScheduler_RunRefresh_Error(t *testing.T) {
	refresher := &MockRefresher{err: errors.New("crawl failed")}
	scheduler := New(1*time.Hour, &mocks.MockTokenProvider{}, refresher)

	if err := scheduler.RunRefresh(); err == nil {
		t.Error("Expected refresh error to be returned")
	}
}

func TestScheduler_Start(t *testing.T) {
	refresher := &MockRefresher{}
	scheduler := New(1*time.Second, &mocks.MockTokenProvider{}, refresher)

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scheduler.Start(ctx)
	}()

	<-ctx.Done()
	wg.Wait()

	if refresher.Calls() < 1 {
		t.Errorf("Expected at least one scheduled refresh, got %d", refresher.Calls())
	}
}

func TestScheduler_StartDisabled(t *testing.T) {
	refresher := &MockRefresher{}
	scheduler := New(0, &mocks.MockTokenProvider{}, refresher)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		scheduler.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected Start to return after context cancellation")
	}

	if refresher.Calls() != 0 {
		t.Errorf("Expected no refresh when disabled, got %d", refresher.Calls())
	}
}
