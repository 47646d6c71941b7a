package concat

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/framecast/framecast/internal/config"
)

func TestWriteConcatFileFormat(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "0000.mkv")
	b := filepath.Join(dir, "0001.mkv")
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	concatPath := filepath.Join(dir, "concat.txt")
	err := writeConcatFile(concatPath, []Artifact{{0, a}, {1, b}})
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(concatPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), string(data))
	}
	if !strings.HasPrefix(lines[0], "file '") || !strings.HasSuffix(lines[0], a+"'") {
		t.Fatalf("unexpected concat line: %q", lines[0])
	}
}

func TestConcatInvokesFFmpegWithExpectedArgs(t *testing.T) {
	orig := execCommandContext
	var gotArgs []string
	execCommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		gotArgs = args
		return exec.CommandContext(ctx, "/bin/sh", "-c", "exit 0")
	}
	defer func() { execCommandContext = orig }()

	dir := t.TempDir()
	cfg := &config.Config{RawOutput: true, FPS: 30}
	err := Concat(context.Background(), dir, []Artifact{{0, filepath.Join(dir, "a.mkv")}}, filepath.Join(dir, "out.mkv"), cfg)
	if err != nil {
		t.Fatal(err)
	}

	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, "-f concat") || !strings.Contains(joined, "-c copy") {
		t.Fatalf("expected concat-demuxer remux args, got %v", gotArgs)
	}
}

func TestVerifyFrameCountMismatch(t *testing.T) {
	orig := execCommandContext
	execCommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		script := `echo '{"streams":[{"nb_frames":"9"}]}'`
		return exec.CommandContext(ctx, "/bin/sh", "-c", script)
	}
	defer func() { execCommandContext = orig }()

	err := VerifyFrameCount(context.Background(), "out.mkv", 10)
	if err == nil {
		t.Fatal("expected a frame-count mismatch error")
	}
}

func TestVerifyFrameCountMatch(t *testing.T) {
	orig := execCommandContext
	execCommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		script := `echo '{"streams":[{"nb_frames":"10"}]}'`
		return exec.CommandContext(ctx, "/bin/sh", "-c", script)
	}
	defer func() { execCommandContext = orig }()

	if err := VerifyFrameCount(context.Background(), "out.mkv", 10); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
}
