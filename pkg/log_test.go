package pkg

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for text, want := range map[string]slog.Level{
		"trace": TraceLevel,
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
	} {
		t.Run(text, func(t *testing.T) {
			if got := ParseLevel(text); got != want {
				t.Errorf("ParseLevel(%q) = %v, want %v", text, got, want)
			}
		})
	}
}

func TestMultiLogHandler(t *testing.T) {
	t.Run(t.Name(), func(t *testing.T) {
		var a, b bytes.Buffer
		m := NewMultiLogHandler(slog.LevelInfo, slog.NewTextHandler(&a, &slog.HandlerOptions{Level: TraceLevel}))
		logger := slog.New(m).With("file", "a.mp4")
		m.Add(slog.NewTextHandler(&b, &slog.HandlerOptions{Level: TraceLevel}))
		logger.Debug("hidden")
		logger.Info("parsed")
		for name, buf := range map[string]*bytes.Buffer{"first": &a, "added": &b} {
			out := buf.String()
			if strings.Contains(out, "hidden") || !strings.Contains(out, "msg=parsed") || !strings.Contains(out, "file=a.mp4") {
				t.Errorf("%s handler got %q", name, out)
			}
		}
	})
}

func TestMultiLogHandlerSetLevel(t *testing.T) {
	t.Run(t.Name(), func(t *testing.T) {
		var buf bytes.Buffer
		m := NewMultiLogHandler(slog.LevelInfo, slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: TraceLevel}))
		m.SetLevel(TraceLevel)
		slog.New(m).Log(context.Background(), TraceLevel, "box")
		if !strings.Contains(buf.String(), "msg=box") {
			t.Errorf("got %q", buf.String())
		}
	})
}

func TestMultiLogHandlerConcurrentWith(t *testing.T) {
	t.Run(t.Name(), func(t *testing.T) {
		m := NewMultiLogHandler(slog.LevelInfo, slog.NewTextHandler(&bytes.Buffer{}, nil))
		logger := slog.New(m)
		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				logger.With("worker", i)
			}()
		}
		wg.Wait()
		if len(m.attrChildren) != 8 {
			t.Errorf("%d children", len(m.attrChildren))
		}
	})
}
