package wirekit

import (
	"errors"
	"os"
	"os/signal"
	"sync"

	"github.com/sirupsen/logrus"
)

// MainLoop is the serialization point of the client runtime: a cooperative
// dispatcher that runs queued work on whichever goroutine calls Run or
// Iterate. Everything the engine delivers arrives through Queue, so event
// callbacks only ever fire inside Run or Iterate. Apart from Queue and
// Quit, nothing on a loop is safe to call concurrently.
type MainLoop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	running bool
	quit    bool
}

// NewMainLoop creates an idle loop.
func NewMainLoop() (*MainLoop, error) {
	return &MainLoop{
		wake: make(chan struct{}, 1),
	}, nil
}

// Queue schedules fn to run during a later Run or Iterate batch. It is
// safe to call from any goroutine and from inside a running callback;
// work queued by a callback lands in the next batch.
func (l *MainLoop) Queue(fn func()) {
	if fn == nil {
		panic("wirekit: Queue with nil function")
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	l.wakeUp()
}

// Run dispatches batches until Quit, blocking while the queue is empty.
// A second concurrent Run returns ErrLoopRunning.
func (l *MainLoop) Run() error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrLoopRunning
	}
	l.running = true
	l.quit = false
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
	}()

	for {
		l.drain()
		l.mu.Lock()
		stop := l.quit
		idle := len(l.queue) == 0
		l.mu.Unlock()
		if stop {
			return nil
		}
		if idle {
			<-l.wake
		}
	}
}

// Iterate dispatches one batch and reports how many callbacks ran. With
// block set it first waits for work to arrive; without it an empty queue
// yields zero immediately. Callbacks may call Iterate again; the nested
// call dispatches whatever was queued after their own batch was taken.
func (l *MainLoop) Iterate(block bool) int {
	if block {
		l.mu.Lock()
		wait := len(l.queue) == 0 && !l.quit
		l.mu.Unlock()
		if wait {
			<-l.wake
		}
	}
	return l.drain()
}

// Quit makes Run return after the current batch. Safe from any goroutine
// and from inside a callback.
func (l *MainLoop) Quit() {
	l.mu.Lock()
	l.quit = true
	l.mu.Unlock()
	l.wakeUp()
}

// Token mints the capability for operations that must be tied to this
// loop's dispatch context.
func (l *MainLoop) Token() Token {
	return Token{loop: l}
}

func (l *MainLoop) drain() int {
	l.mu.Lock()
	batch := l.queue
	l.queue = nil
	l.mu.Unlock()
	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

func (l *MainLoop) wakeUp() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Token proves the holder was handed a specific loop to dispatch on.
// Operations that would otherwise have to trust a "called on the loop"
// convention take one; only MainLoop.Token mints useful values and the
// zero Token is rejected everywhere it is accepted.
type Token struct {
	loop *MainLoop
}

// SignalSource forwards an OS signal onto a loop. Close stops the watch.
type SignalSource struct {
	ch   chan os.Signal
	done chan struct{}
	once sync.Once
}

// AddSignal watches sig and queues fn on the token's loop each time it
// arrives. The handler therefore runs inside Run or Iterate like every
// other callback, never on the signal goroutine.
func AddSignal(tok Token, sig os.Signal, fn func()) (*SignalSource, error) {
	if tok.loop == nil {
		return nil, errors.New("zero Token, mint one with MainLoop.Token")
	}
	if sig == nil || fn == nil {
		return nil, errors.New("signal and handler must be non-nil")
	}

	src := &SignalSource{
		ch:   make(chan os.Signal, 1),
		done: make(chan struct{}),
	}
	signal.Notify(src.ch, sig)

	go func() {
		for {
			select {
			case <-src.done:
				return
			case s := <-src.ch:
				logrus.WithFields(logrus.Fields{
					"function": "AddSignal",
					"signal":   s.String(),
				}).Debug("Queueing signal handler on loop")
				tok.loop.Queue(fn)
			}
		}
	}()
	return src, nil
}

// Close stops watching the signal. Idempotent; a handler already queued
// still runs.
func (s *SignalSource) Close() {
	s.once.Do(func() {
		signal.Stop(s.ch)
		close(s.done)
	})
}
