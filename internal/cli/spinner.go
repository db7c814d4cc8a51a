package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner draws a progress indicator on one line until stopped. Without a
// terminal it draws nothing.
type spinner struct {
	w       io.Writer
	msg     string
	animate bool
	halt    chan struct{}
	exited  chan struct{}
	once    sync.Once
}

// spin starts a spinner on stderr. Call stop when the work is done; the
// spinner also stops when ctx ends.
func spin(ctx context.Context, msg string) (stop func()) {
	return spinTo(ctx, os.Stderr, isatty.IsTerminal(os.Stderr.Fd()), msg).stop
}

func spinTo(ctx context.Context, w io.Writer, animate bool, msg string) *spinner {
	s := &spinner{
		w:       w,
		msg:     msg,
		animate: animate,
		halt:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.exited)
	var tick <-chan time.Time
	if s.animate {
		t := time.NewTicker(spinnerInterval)
		defer t.Stop()
		tick = t.C
	}
	for frame := 0; ; frame++ {
		select {
		case <-ctx.Done():
			s.clear()
			return
		case <-s.halt:
			s.clear()
			return
		case <-tick:
			fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(spinnerFrames[frame%len(spinnerFrames)]), StyleDim.Render(s.msg))
		}
	}
}

func (s *spinner) clear() {
	if s.animate {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.msg)+4))
	}
}

// stop halts the spinner and waits until its line is cleared. Repeated
// calls are no-ops.
func (s *spinner) stop() {
	s.once.Do(func() { close(s.halt) })
	<-s.exited
}
