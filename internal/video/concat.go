package video

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Concatenator joins video files without re-encoding.
type Concatenator struct {
	ffmpegPath string
}

// NewConcatenator uses the given ffmpeg binary; an empty path falls back to
// whatever is on PATH.
func NewConcatenator(ffmpegPath string) *Concatenator {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Concatenator{ffmpegPath: ffmpegPath}
}

// Concat joins the given videos, in order, into outPath using ffmpeg's concat
// demuxer with stream copy. At least two inputs are required.
func (c *Concatenator) Concat(ctx context.Context, videoPaths []string, outPath string) error {
	if len(videoPaths) < 2 {
		return fmt.Errorf("concat needs at least 2 videos, got %d", len(videoPaths))
	}

	listPath, err := writeConcatList(videoPaths)
	if err != nil {
		return err
	}
	defer os.Remove(listPath)

	cmd := exec.CommandContext(ctx, c.ffmpegPath,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg concat: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// writeConcatList writes the concat demuxer input list. Paths are made
// absolute so the list file's own location does not matter, and single quotes
// are escaped per the demuxer's quoting rules.
func writeConcatList(videoPaths []string) (string, error) {
	f, err := os.CreateTemp("", "concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("create concat list: %w", err)
	}
	defer f.Close()

	for _, p := range videoPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		escaped := strings.ReplaceAll(abs, "'", `'\''`)
		if _, err := fmt.Fprintf(f, "file '%s'\n", escaped); err != nil {
			os.Remove(f.Name())
			return "", fmt.Errorf("write concat list: %w", err)
		}
	}
	return f.Name(), nil
}
