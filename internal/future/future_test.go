package future

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestFuture_Get(t *testing.T) {
	t.Run("successful result", func(t *testing.T) {
		future := New[string]()

		go func() {
			time.Sleep(50 * time.Millisecond)
			future.Resolve("success", nil)
		}()

		value, err := future.Get()

		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if value != "success" {
			t.Errorf("expected value 'success', got %v", value)
		}
	})

	t.Run("error result", func(t *testing.T) {
		future := New[string]()
		expectedErr := errors.New("task failed")

		go future.Resolve("", expectedErr)

		value, err := future.Get()

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if value != "" {
			t.Errorf("expected empty value, got %v", value)
		}
	})

	t.Run("multiple Get calls return same result", func(t *testing.T) {
		future := New[int]()
		go future.Resolve(123, nil)

		value1, err1 := future.Get()
		value2, err2 := future.Get()

		if value1 != value2 || err1 != err2 {
			t.Errorf("Get calls returned different results")
		}
		if value1 != 123 {
			t.Errorf("expected value 123, got %v", value1)
		}
	})
}

func TestFuture_Resolve_FirstWins(t *testing.T) {
	future := New[int]()

	if !future.Resolve(1, nil) {
		t.Fatal("first Resolve should report success")
	}
	if future.Resolve(2, errors.New("late")) {
		t.Fatal("second Resolve should be ignored")
	}

	value, err := future.Get()
	if value != 1 || err != nil {
		t.Errorf("expected (1, nil), got (%d, %v)", value, err)
	}
}

func TestFuture_GetWithContext(t *testing.T) {
	t.Run("successful result before timeout", func(t *testing.T) {
		future := New[string]()
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		go func() {
			time.Sleep(50 * time.Millisecond)
			future.Resolve("success", nil)
		}()

		value, err := future.GetWithContext(ctx)
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if value != "success" {
			t.Errorf("expected value 'success', got %v", value)
		}
	})

	t.Run("context timeout before result", func(t *testing.T) {
		future := New[string]()
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := future.GetWithContext(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded, got %v", err)
		}

		if future.IsReady() {
			t.Error("context timeout must not resolve the future")
		}

		future.Resolve("late", nil)
		value, err := future.Get()
		if err != nil || value != "late" {
			t.Errorf("expected late result after timeout, got (%q, %v)", value, err)
		}
	})
}

func TestFuture_TryGet(t *testing.T) {
	future := New[string]()

	_, _, ready := future.TryGet()
	if ready {
		t.Error("expected result not ready")
	}

	future.Resolve("ok", nil)

	value, err, ready := future.TryGet()
	if !ready {
		t.Fatal("expected result ready")
	}
	if value != "ok" || err != nil {
		t.Errorf("expected (ok, nil), got (%q, %v)", value, err)
	}
}

func TestFuture_Done(t *testing.T) {
	future := New[int]()

	select {
	case <-future.Done():
		t.Fatal("done channel closed before resolution")
	default:
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		future.Resolve(7, nil)
	}()

	select {
	case <-future.Done():
	case <-time.After(time.Second):
		t.Fatal("done channel not closed after resolution")
	}

	if !future.IsReady() {
		t.Error("expected future to be ready")
	}
}

func TestGo(t *testing.T) {
	future := Go(func() (int, error) {
		time.Sleep(10 * time.Millisecond)
		return 42, nil
	})

	value, err := future.Get()
	if err != nil || value != 42 {
		t.Errorf("expected (42, nil), got (%d, %v)", value, err)
	}
}

func TestAll(t *testing.T) {
	t.Run("values in input order", func(t *testing.T) {
		delays := []int{30, 10, 20}
		futures := make([]*Future[int], len(delays))
		for i, d := range delays {
			futures[i] = Go(func() (int, error) {
				time.Sleep(time.Duration(d) * time.Millisecond)
				return d, nil
			})
		}

		values, err := All(context.Background(), futures)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, d := range delays {
			if values[i] != d {
				t.Errorf("index %d: expected %d, got %d", i, d, values[i])
			}
		}
	})

	t.Run("error stops collection", func(t *testing.T) {
		boom := errors.New("boom")
		futures := []*Future[int]{New[int](), New[int]()}
		futures[0].Resolve(0, boom)

		values, err := All(context.Background(), futures)
		if !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
		if values != nil {
			t.Errorf("expected nil values, got %v", values)
		}
	})
}

func TestFuture_ConcurrentAccess(t *testing.T) {
	future := New[int]()
	var wg sync.WaitGroup

	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := future.Get()
			if err != nil || value != 99 {
				t.Errorf("expected (99, nil), got (%d, %v)", value, err)
			}
		}()
	}

	time.Sleep(10 * time.Millisecond)
	future.Resolve(99, nil)
	wg.Wait()
}
