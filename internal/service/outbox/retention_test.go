package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/adosoftyazilim/blrb2b/internal/domain"
)

var _ domain.OutboxRepository = (*stubRetentionRepo)(nil)

func TestRetentionWorker_DeleteExpired_Batches(t *testing.T) {
	t.Parallel()

	repo := &stubRetentionRepo{
		deleteResults: []int{2, 2, 1},
	}

	worker := NewRetentionWorker(repo, WithRetentionBatchSize(2))

	deleted, err := worker.DeleteExpired(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("DeleteExpired failed: %v", err)
	}

	if deleted != 5 {
		t.Fatalf("unexpected deleted total: got=%d want=5", deleted)
	}

	if calls := repo.calls(); calls != 3 {
		t.Fatalf("unexpected delete calls: got=%d want=3", calls)
	}
}

func TestRetentionWorker_DeleteExpired_Error(t *testing.T) {
	t.Parallel()

	repo := &stubRetentionRepo{
		deleteErrors: []error{errors.New("boom")},
	}

	worker := NewRetentionWorker(repo, WithRetentionBatchSize(10))

	deleted, err := worker.DeleteExpired(context.Background(), time.Now().UTC())
	if err == nil {
		t.Fatal("expected DeleteExpired error")
	}
	if deleted != 0 {
		t.Fatalf("unexpected deleted total: got=%d want=0", deleted)
	}
}

func TestRetentionWorker_DeleteExpired_ZeroBeforeUsesRetention(t *testing.T) {
	t.Parallel()

	repo := &stubRetentionRepo{
		deleteResults: []int{0},
	}

	worker := NewRetentionWorker(repo, WithRetentionPeriod(time.Hour))

	if _, err := worker.DeleteExpired(context.Background(), time.Time{}); err != nil {
		t.Fatalf("DeleteExpired failed: %v", err)
	}

	before := repo.lastBefore()
	wantAround := time.Now().UTC().Add(-time.Hour)
	if before.Before(wantAround.Add(-time.Minute)) || before.After(wantAround.Add(time.Minute)) {
		t.Fatalf("unexpected cutoff: got=%v want around %v", before, wantAround)
	}
}

func TestRetentionWorker_Run_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	repo := &stubRetentionRepo{
		deleteResults: []int{0, 0, 0},
	}

	worker := NewRetentionWorker(
		repo,
		WithRetentionInterval(5*time.Millisecond),
		WithRetentionBatchSize(10),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancel")
	}

	if calls := repo.calls(); calls == 0 {
		t.Fatal("expected cleanup to be called at least once")
	}
}

type stubRetentionRepo struct {
	mu sync.Mutex

	deleteResults []int
	deleteErrors  []error
	callCount     int
	before        time.Time
}

func (s *stubRetentionRepo) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	panic("not implemented")
}

func (s *stubRetentionRepo) PullPending(int) ([]domain.OutboxMessage, error) {
	panic("not implemented")
}

func (s *stubRetentionRepo) Stats() (domain.OutboxStats, error) {
	panic("not implemented")
}

func (s *stubRetentionRepo) MarkSent(string) error {
	panic("not implemented")
}

func (s *stubRetentionRepo) MarkFailed(string) error {
	panic("not implemented")
}

func (s *stubRetentionRepo) DeleteSent(before time.Time, _ int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.callCount++
	s.before = before

	if len(s.deleteErrors) > 0 {
		err := s.deleteErrors[0]
		s.deleteErrors = s.deleteErrors[1:]
		if err != nil {
			return 0, err
		}
	}

	if len(s.deleteResults) == 0 {
		return 0, nil
	}
	result := s.deleteResults[0]
	s.deleteResults = s.deleteResults[1:]
	return result, nil
}

func (s *stubRetentionRepo) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callCount
}

func (s *stubRetentionRepo) lastBefore() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.before
}
