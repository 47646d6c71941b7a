// Package concat implements the Concatenator & Verifier: it merges the
// per-Part artifacts into the final output video and optionally checks
// the result's frame count and the Frame Hash Map's uniqueness.
package concat

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/framecast/framecast/internal/config"
	"github.com/framecast/framecast/internal/framehash"
)

var execCommandContext = exec.CommandContext

// Artifact is one Part's rendered-and-encoded output file, in the order
// it must appear in the final video.
type Artifact struct {
	PartIndex int
	Path      string
}

// writeConcatFile writes an ffmpeg concat-demuxer descriptor listing each
// artifact's absolute path, one per line, in order. Grounded directly in
// the teacher's chunk.writeConcatFile.
func writeConcatFile(concatPath string, artifacts []Artifact) error {
	f, err := os.Create(concatPath)
	if err != nil {
		return fmt.Errorf("concat: failed to create concat file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for _, a := range artifacts {
		abs, err := filepath.Abs(a.Path)
		if err != nil {
			return fmt.Errorf("concat: failed to resolve path %s: %w", a.Path, err)
		}
		if _, err := fmt.Fprintf(f, "file '%s'\n", abs); err != nil {
			return fmt.Errorf("concat: failed to write concat entry: %w", err)
		}
	}
	return nil
}

// Concat merges artifacts, in order, into outputPath. When cfg.RawOutput
// is set the parts are remuxed with -c copy (fast, requires the parts to
// share one codec/timebase); otherwise they're transcoded on the way out.
func Concat(ctx context.Context, workDir string, artifacts []Artifact, outputPath string, cfg *config.Config) error {
	concatPath := filepath.Join(workDir, "concat.txt")
	if err := writeConcatFile(concatPath, artifacts); err != nil {
		return err
	}

	args := []string{
		"-hide_banner", "-loglevel", "warning", "-y",
		"-f", "concat", "-safe", "0", "-i", concatPath,
	}
	if cfg.RawOutput {
		args = append(args, "-c", "copy")
	} else {
		args = append(args, "-c:v", "libx264", "-pix_fmt", "yuv420p")
	}
	args = append(args, "-r", strconv.Itoa(cfg.FPS), outputPath)

	cmd := execCommandContext(ctx, "ffmpeg", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("concat: ffmpeg concat failed: %w\n%s", err, out)
	}
	return nil
}

// probeFormat mirrors the subset of ffprobe's JSON
// -show_entries stream=nb_frames output this package reads.
type probeFormat struct {
	Streams []struct {
		NbFrames string `json:"nb_frames"`
	} `json:"streams"`
}

// VerifyFrameCount shells out to ffprobe and compares the output video's
// frame count against the expected total.
func VerifyFrameCount(ctx context.Context, outputPath string, expectedFrames int) error {
	cmd := execCommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-select_streams", "v:0",
		"-show_entries", "stream=nb_frames",
		outputPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("concat: ffprobe failed: %w", err)
	}

	var probed probeFormat
	if err := json.Unmarshal(out, &probed); err != nil {
		return fmt.Errorf("concat: failed to parse ffprobe output: %w", err)
	}
	if len(probed.Streams) == 0 {
		return fmt.Errorf("concat: ffprobe reported no video stream")
	}

	actual, err := strconv.Atoi(probed.Streams[0].NbFrames)
	if err != nil {
		return fmt.Errorf("concat: ffprobe returned a non-numeric frame count %q: %w", probed.Streams[0].NbFrames, err)
	}
	if actual != expectedFrames {
		return fmt.Errorf("concat: frame count mismatch: output has %d frames, expected %d", actual, expectedFrames)
	}
	return nil
}

// VerifyHashUniqueness scans the Frame Hash Map for the first pair of
// consecutive frames that hashed identically.
func VerifyHashUniqueness(hashes *framehash.Map, startFrame, count int) error {
	if dup := hashes.FirstDuplicate(startFrame, count); dup != nil {
		return dup
	}
	return nil
}
