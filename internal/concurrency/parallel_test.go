package concurrency

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestForEachEmpty(t *testing.T) {
	errs := ForEach(context.Background(), []int{}, Options{MaxWorkers: 4}, func(ctx context.Context, i int, item int) error {
		return nil
	})
	if errs != nil {
		t.Errorf("Expected nil errors for empty input, got %v", errs)
	}
}

func TestForEachVisitsEveryIndex(t *testing.T) {
	input := []int{10, 20, 30, 40, 50}
	results := make([]int, len(input))

	errs := ForEach(context.Background(), input, Options{MaxWorkers: 3}, func(ctx context.Context, i int, item int) error {
		results[i] = item * 2
		return nil
	})
	if len(errs) != 0 {
		t.Fatalf("Expected no errors, got %v", errs)
	}
	for i, item := range input {
		if results[i] != item*2 {
			t.Errorf("index %d: got %d, want %d", i, results[i], item*2)
		}
	}
}

func TestForEachCollectsErrors(t *testing.T) {
	input := []int{1, 2, 3, 4, 5, 6}

	errs := ForEach(context.Background(), input, Options{MaxWorkers: 2}, func(ctx context.Context, i int, item int) error {
		if item%2 == 0 {
			return errors.New("even")
		}
		return nil
	})
	if len(errs) != 3 {
		t.Errorf("Expected 3 errors, got %d", len(errs))
	}
}

func TestForEachSequentialWhenUnbounded(t *testing.T) {
	// MaxWorkers <= 0 degrades to a single worker
	var mu sync.Mutex
	running, peak := 0, 0

	ForEach(context.Background(), make([]int, 20), Options{MaxWorkers: 0}, func(ctx context.Context, i int, item int) error {
		mu.Lock()
		running++
		if running > peak {
			peak = running
		}
		mu.Unlock()

		mu.Lock()
		running--
		mu.Unlock()
		return nil
	})

	if peak > 1 {
		t.Errorf("Expected at most 1 concurrent worker, saw %d", peak)
	}
}

func TestForEachCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	var mu sync.Mutex
	ForEach(ctx, make([]int, 10), Options{MaxWorkers: 2}, func(ctx context.Context, i int, item int) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	})

	// workers bail out once they observe cancellation; the pool must not hang
	mu.Lock()
	defer mu.Unlock()
	if calls > 10 {
		t.Errorf("unexpected call count %d", calls)
	}
}
