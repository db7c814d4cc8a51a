package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type editCounter struct {
	NoopLayoutHooks
	mu    sync.Mutex
	edits []string
}

func (c *editCounter) OnEditComplete(kind, subject string, _ int, _ time.Duration, _ error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edits = append(c.edits, kind+" "+subject)
}

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Errorf("Layout() = %T, want NoopLayoutHooks", Layout())
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T, want NoopPipelineHooks", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want NoopCacheHooks", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T, want NoopHTTPHooks", HTTP())
	}
}

func TestSetAndReset(t *testing.T) {
	t.Cleanup(Reset)

	c := &editCounter{}
	SetLayoutHooks(c)
	SetLayoutHooks(nil)
	Layout().OnEditComplete("add_node", "a", 1, 0, nil)
	if len(c.edits) != 1 {
		t.Fatalf("edits = %v, want one", c.edits)
	}

	Reset()
	Layout().OnEditComplete("add_node", "b", 1, 0, nil)
	if len(c.edits) != 1 {
		t.Errorf("edits after Reset = %v, want unchanged", c.edits)
	}
}

func TestRegister(t *testing.T) {
	t.Cleanup(Reset)
	tests := []struct {
		name string
		h    any
		want int
	}{
		{"layout only", &editCounter{}, 1},
		{"all four", NewLogHooks(log.New(&bytes.Buffer{})), 4},
		{"cache only", NoopCacheHooks{}, 1},
		{"unrelated", "hooks", 0},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		if got := Register(tt.h); got != tt.want {
			t.Errorf("Register(%s) = %d, want %d", tt.name, got, tt.want)
		}
	}
	if _, ok := HTTP().(*LogHooks); !ok {
		t.Errorf("HTTP() = %T, want *LogHooks", HTTP())
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Cleanup(Reset)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				SetCacheHooks(NoopCacheHooks{})
			}
			Cache().OnCacheHit(context.Background(), "svg")
		}()
	}
	wg.Wait()
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	l := log.New(&buf)
	l.SetLevel(log.DebugLevel)
	h := NewLogHooks(l)
	ctx := context.Background()

	h.OnEditComplete("add_node", "db", 3, time.Millisecond, nil)
	h.OnReplayComplete(ctx, 2, 7, time.Millisecond, errors.New("boom"))
	h.OnCacheMiss(ctx, "snapshot")
	h.OnResponse(ctx, "POST", "/sessions", 201, time.Millisecond)

	got := buf.String()
	for _, want := range []string{"hooks", "edit done", "actions=3", "WARN", "err=boom", "cache miss", "status=201"} {
		if !strings.Contains(got, want) {
			t.Errorf("log output missing %q:\n%s", want, got)
		}
	}
}
