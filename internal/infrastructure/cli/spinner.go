package cli

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner displays an animated status line while the advisor or a scan runs.
// A disabled spinner does nothing, so callers need not check for a terminal.
type Spinner struct {
	writer   io.Writer
	interval time.Duration
	enabled  bool

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, enabled bool) *Spinner {
	return &Spinner{
		writer:   w,
		interval: 80 * time.Millisecond,
		enabled:  enabled,
	}
}

// Start begins the animation next to message. Starting a running spinner is a no-op.
func (s *Spinner) Start(message string) {
	if !s.enabled {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	stop := make(chan struct{})
	s.stop = stop

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for idx := 0; ; idx++ {
			fmt.Fprintf(s.writer, "\r%s %s", spinnerFrames[idx%len(spinnerFrames)], message)
			select {
			case <-stop:
				// clear the line
				fmt.Fprint(s.writer, "\r\033[K")
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop ends the animation and waits for the line to be cleared.
func (s *Spinner) Stop() {
	s.mu.Lock()
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	s.wg.Wait()
}
