package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinner(t *testing.T) {
	tests := []struct {
		name    string
		animate bool
		wait    time.Duration
		want    bool
	}{
		{"animated", true, 4 * spinnerInterval, true},
		{"no terminal", false, 4 * spinnerInterval, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := spinTo(context.Background(), &buf, tt.animate, "Rendering...")
			time.Sleep(tt.wait)
			s.stop()
			if got := strings.Contains(buf.String(), "Rendering..."); got != tt.want {
				t.Errorf("output %q contains message = %v, want %v", buf.String(), got, tt.want)
			}
			if tt.animate && !strings.HasSuffix(buf.String(), "\r") {
				t.Errorf("output %q does not end with a cleared line", buf.String())
			}
		})
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := spinTo(ctx, &bytes.Buffer{}, true, "x")
	cancel()
	select {
	case <-s.exited:
	case <-time.After(time.Second):
		t.Fatal("spinner still running after cancel")
	}
	s.stop()
}

func TestSpinnerStopTwice(t *testing.T) {
	stop := spin(context.Background(), "x")
	stop()
	stop()
}
