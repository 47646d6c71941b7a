// Package sink implements the Encoder Sink: one ffmpeg subprocess per
// Part, fed a stream of whole encoded frame images over stdin and
// producing one Part Artifact file.
package sink

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/framecast/framecast/internal/config"
)

// execCommandContext is swapped out in tests, the same mockable-exec-var
// idiom used for ffmpeg/ffprobe invocation across the pack.
var execCommandContext = exec.CommandContext

const stderrTailLines = 20

// Sink is the Encoder Sink for one Part: it owns exactly one ffmpeg
// subprocess for the Part's lifetime.
type Sink struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stderrBuf *tailBuffer
	path      string

	mu     sync.Mutex
	closed bool
}

// Open starts the ffmpeg subprocess that will assemble outputPath from a
// stream of frameFormat-encoded still images, reading stdin as an
// image2pipe stream so ffmpeg infers frame boundaries from the codec's
// own container framing rather than needing explicit length prefixes.
func Open(ctx context.Context, outputPath string, fps int, frameFormat config.ImageFormat) (*Sink, error) {
	codec := "mjpeg"
	if frameFormat == config.ImagePNG {
		codec = "png_pipe"
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "warning",
		"-y",
		"-f", "image2pipe",
		"-framerate", fmt.Sprintf("%d", fps),
		"-c:v", codec,
		"-i", "pipe:0",
		"-c:v", "copy",
		outputPath,
	}

	cmd := execCommandContext(ctx, "ffmpeg", args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("sink: failed to open stdin pipe: %w", err)
	}

	tail := newTailBuffer(stderrTailLines)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("sink: failed to open stderr pipe: %w", err)
	}
	go tail.drain(stderr)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("sink: failed to start ffmpeg: %w", err)
	}

	return &Sink{cmd: cmd, stdin: stdin, stderrBuf: tail, path: outputPath}, nil
}

// Write sends one encoded frame's bytes to the subprocess. The call
// returns only once the OS pipe has accepted the bytes into its kernel
// buffer — the per-write acknowledgement spec.md calls for as the sole
// backpressure mechanism, with no separate drain-event plumbing needed
// since os/exec pipes are plain OS pipes, not sockets.
func (s *Sink) Write(frame []byte) error {
	_, err := s.stdin.Write(frame)
	if err != nil {
		return fmt.Errorf("sink: write failed: %w (ffmpeg: %s)", err, s.stderrBuf.String())
	}
	return nil
}

// End closes stdin and waits for ffmpeg to finish muxing the Part
// Artifact, returning an error that includes ffmpeg's stderr tail on
// failure.
func (s *Sink) End() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if err := s.stdin.Close(); err != nil {
		return fmt.Errorf("sink: failed to close stdin: %w", err)
	}
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("sink: ffmpeg failed: %w (stderr: %s)", err, s.stderrBuf.String())
	}
	return nil
}

// Kill forcibly terminates the subprocess, used on the Orchestrator's
// fail-fast abort path to guarantee no encoder process outlives the run.
func (s *Sink) Kill() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	_ = s.stdin.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
}

// Path returns the Part Artifact's output path.
func (s *Sink) Path() string {
	return s.path
}

// tailBuffer keeps the last N lines written to it, used to surface
// ffmpeg's own diagnostic output in an encoder failure rather than just
// the subprocess exit code.
type tailBuffer struct {
	mu    sync.Mutex
	lines []string
	max   int
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) drain(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		t.mu.Lock()
		t.lines = append(t.lines, scanner.Text())
		if len(t.lines) > t.max {
			t.lines = t.lines[len(t.lines)-t.max:]
		}
		t.mu.Unlock()
	}
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var b bytes.Buffer
	for _, l := range t.lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}
