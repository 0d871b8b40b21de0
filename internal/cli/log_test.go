package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("laid out", "nodes", 7, "cached", true)

	out := buf.String()
	for _, want := range []string{"laid out", "nodes=7", "cached=true", "duration="} {
		if !strings.Contains(out, want) {
			t.Errorf("progress line missing %q: %s", want, out)
		}
	}
}

func TestProgressBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.WarnLevel))
	prog.done("laid out", "nodes", 7)
	if buf.Len() != 0 {
		t.Errorf("info progress logged at warn level: %s", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)

	if got := loggerFromContext(withLogger(context.Background(), l)); got != l {
		t.Error("loggerFromContext should return the attached logger")
	}
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext should fall back to log.Default")
	}
}

func TestLayoutCommandLogsProgress(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		args  []string
		want  []string
		skip  []string
	}{
		{
			name:  "collapsed",
			level: LogInfo,
			want:  []string{"laid out", "nodes=4", "expanded=0", "cached=false"},
			skip:  []string{"computed view"},
		},
		{
			name:  "expanded",
			level: LogInfo,
			args:  []string{"--expand", "build"},
			want:  []string{"laid out", "nodes=8", "expanded=1"},
		},
		{
			name:  "verbose",
			level: LogDebug,
			want:  []string{"computed view", "laid out"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, input := setupCommand(t)
			var buf bytes.Buffer
			c := New(&buf, tt.level)

			args := append([]string{"layout", input, "-o", filepath.Join(t.TempDir(), "view.json")}, tt.args...)
			if err := execute(t, c, args...); err != nil {
				t.Fatalf("layout: %v", err)
			}

			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("log missing %q:\n%s", want, out)
				}
			}
			for _, skip := range tt.skip {
				if strings.Contains(out, skip) {
					t.Errorf("log should not contain %q:\n%s", skip, out)
				}
			}
		})
	}
}

func TestLayoutCommandLogsCacheHit(t *testing.T) {
	_, input := setupCommand(t)
	out := filepath.Join(t.TempDir(), "view.json")

	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	if err := execute(t, c, "layout", input, "-o", out); err != nil {
		t.Fatalf("first layout: %v", err)
	}
	buf.Reset()
	if err := execute(t, c, "layout", input, "-o", out); err != nil {
		t.Fatalf("second layout: %v", err)
	}
	if !strings.Contains(buf.String(), "cached=true") {
		t.Errorf("second run should log a cache hit:\n%s", buf.String())
	}
}
