package wirekit

import (
	"errors"
	"syscall"
	"testing"
	"time"
)

func TestLoopQueueOrder(t *testing.T) {
	loop, err := NewMainLoop()
	if err != nil {
		t.Fatalf("NewMainLoop() error = %v", err)
	}

	var order []int
	for i := 1; i <= 3; i++ {
		loop.Queue(func() { order = append(order, i) })
	}

	if ran := loop.Iterate(false); ran != 3 {
		t.Errorf("Iterate() = %d, want 3", ran)
	}
	for i, v := range order {
		if v != i+1 {
			t.Fatalf("order = %v, want [1 2 3]", order)
		}
	}
}

func TestLoopQueueNilPanics(t *testing.T) {
	loop, _ := NewMainLoop()
	defer func() {
		if recover() == nil {
			t.Error("Queue(nil) did not panic")
		}
	}()
	loop.Queue(nil)
}

func TestIterateEmpty(t *testing.T) {
	loop, _ := NewMainLoop()
	if ran := loop.Iterate(false); ran != 0 {
		t.Errorf("Iterate() on empty loop = %d, want 0", ran)
	}
}

func TestIterateBatching(t *testing.T) {
	loop, _ := NewMainLoop()

	second := false
	loop.Queue(func() {
		loop.Queue(func() { second = true })
	})

	if ran := loop.Iterate(false); ran != 1 {
		t.Errorf("first Iterate() = %d, want 1", ran)
	}
	if second {
		t.Error("work queued by a callback ran in the same batch")
	}
	if ran := loop.Iterate(false); ran != 1 {
		t.Errorf("second Iterate() = %d, want 1", ran)
	}
	if !second {
		t.Error("queued work never ran")
	}
}

func TestIterateNested(t *testing.T) {
	loop, _ := NewMainLoop()

	inner := false
	loop.Queue(func() {
		loop.Queue(func() { inner = true })
		if ran := loop.Iterate(false); ran != 1 {
			t.Errorf("nested Iterate() = %d, want 1", ran)
		}
	})
	loop.Iterate(false)
	if !inner {
		t.Error("nested iterate did not dispatch the follow-up batch")
	}
}

func TestRunUntilQuit(t *testing.T) {
	loop, _ := NewMainLoop()

	ran := 0
	loop.Queue(func() { ran++ })
	loop.Queue(func() { loop.Quit() })

	if err := loop.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if ran != 1 {
		t.Errorf("callbacks before Quit = %d, want 1", ran)
	}
}

func TestRunReentrant(t *testing.T) {
	loop, _ := NewMainLoop()

	var nested error
	loop.Queue(func() {
		nested = loop.Run()
		loop.Quit()
	})
	if err := loop.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !errors.Is(nested, ErrLoopRunning) {
		t.Errorf("nested Run() error = %v, want ErrLoopRunning", nested)
	}
}

func TestRunRestart(t *testing.T) {
	loop, _ := NewMainLoop()

	loop.Queue(func() { loop.Quit() })
	if err := loop.Run(); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	again := false
	loop.Queue(func() {
		again = true
		loop.Quit()
	})
	if err := loop.Run(); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if !again {
		t.Error("second Run dispatched nothing")
	}
}

func TestQueueFromOtherGoroutine(t *testing.T) {
	loop, _ := NewMainLoop()

	done := make(chan struct{})
	go func() {
		loop.Queue(func() { loop.Quit() })
		close(done)
	}()
	if err := loop.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	<-done
}

func TestAddSignalValidation(t *testing.T) {
	loop, _ := NewMainLoop()

	tests := []struct {
		name string
		run  func() error
	}{
		{"zero token", func() error {
			_, err := AddSignal(Token{}, syscall.SIGUSR1, func() {})
			return err
		}},
		{"nil signal", func() error {
			_, err := AddSignal(loop.Token(), nil, func() {})
			return err
		}},
		{"nil handler", func() error {
			_, err := AddSignal(loop.Token(), syscall.SIGUSR1, nil)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.run() == nil {
				t.Error("AddSignal() error = nil, want non-nil")
			}
		})
	}
}

func TestSignalDelivery(t *testing.T) {
	loop, _ := NewMainLoop()

	got := 0
	src, err := AddSignal(loop.Token(), syscall.SIGUSR1, func() { got++ })
	if err != nil {
		t.Fatalf("AddSignal() error = %v", err)
	}
	defer src.Close()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatalf("Kill() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for got == 0 && time.Now().Before(deadline) {
		loop.Iterate(false)
		time.Sleep(time.Millisecond)
	}
	if got != 1 {
		t.Errorf("handler ran %d times, want 1", got)
	}

	src.Close()
	src.Close()
}
