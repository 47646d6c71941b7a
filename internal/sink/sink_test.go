package sink

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/framecast/framecast/internal/config"
)

// useFakeEncoder replaces the ffmpeg invocation with a stub that copies
// stdin to the named output argument, standing in for a real encoder
// binary so the write/end/kill lifecycle can be exercised without one.
func useFakeEncoder(t *testing.T) {
	t.Helper()
	orig := execCommandContext
	execCommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		out := args[len(args)-1]
		script := "cat > " + shellQuote(out)
		return exec.CommandContext(ctx, "/bin/sh", "-c", script)
	}
	t.Cleanup(func() { execCommandContext = orig })
}

func shellQuote(s string) string {
	return "'" + s + "'"
}

func TestSinkWriteEndLifecycle(t *testing.T) {
	useFakeEncoder(t)

	dir := t.TempDir()
	outPath := filepath.Join(dir, "part.mkv")

	s, err := Open(context.Background(), outPath, 30, config.ImageJPEG)
	if err != nil {
		t.Fatal(err)
	}

	frames := [][]byte{[]byte("frame-0"), []byte("frame-1"), []byte("frame-2")}
	for _, f := range frames {
		if err := s.Write(f); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	if err := s.End(); err != nil {
		t.Fatalf("end failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	want := "frame-0frame-1frame-2"
	if string(data) != want {
		t.Fatalf("got %q, want %q", string(data), want)
	}
}

func TestSinkKillTerminatesProcess(t *testing.T) {
	orig := execCommandContext
	execCommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "/bin/sh", "-c", "cat > /dev/null; sleep 30")
	}
	defer func() { execCommandContext = orig }()

	dir := t.TempDir()
	s, err := Open(context.Background(), filepath.Join(dir, "part.mkv"), 30, config.ImageJPEG)
	if err != nil {
		t.Fatal(err)
	}

	s.Kill()

	if s.cmd.ProcessState == nil {
		t.Fatal("expected process to have exited after Kill")
	}
}

func TestSinkEndIsIdempotent(t *testing.T) {
	useFakeEncoder(t)
	dir := t.TempDir()
	s, err := Open(context.Background(), filepath.Join(dir, "part.mkv"), 30, config.ImageJPEG)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.End(); err != nil {
		t.Fatal(err)
	}
	if err := s.End(); err != nil {
		t.Fatalf("second End() should be a no-op, got %v", err)
	}
}
