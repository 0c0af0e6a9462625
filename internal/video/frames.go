// Package video shells out to ffmpeg/ffprobe for the frame-level work around
// segment chaining: pulling the last frame of a finished segment and
// concatenating segment outputs into one file.
package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrNoReadableFrame is returned when neither the last nor the second-to-last
// frame of a video can be decoded.
var ErrNoReadableFrame = errors.New("no readable frame")

// FrameExtractor pulls still frames out of videos.
type FrameExtractor struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFrameExtractor uses the given ffmpeg and ffprobe binaries; empty paths
// fall back to whatever is on PATH.
func NewFrameExtractor(ffmpegPath, ffprobePath string) *FrameExtractor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FrameExtractor{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// ExtractLastFrame decodes the final frame of videoPath into
// <base>_lastframe.png and returns that path. If the nominal last frame is
// unreadable it falls back to the second-to-last; if neither decodes it fails
// with ErrNoReadableFrame.
func (e *FrameExtractor) ExtractLastFrame(ctx context.Context, videoPath string) (string, error) {
	total, err := e.countFrames(ctx, videoPath)
	if err != nil {
		return "", err
	}
	if total < 1 {
		return "", fmt.Errorf("%w: %s", ErrNoReadableFrame, videoPath)
	}

	outPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + "_lastframe.png"

	for _, index := range []int{total - 1, total - 2} {
		if index < 0 {
			break
		}
		if err := e.extractFrame(ctx, videoPath, index, outPath); err == nil {
			return outPath, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoReadableFrame, videoPath)
}

// countFrames asks ffprobe for the video stream's frame count.
func (e *FrameExtractor) countFrames(ctx context.Context, videoPath string) (int, error) {
	cmd := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-count_frames",
		"-show_entries", "stream=nb_read_frames",
		"-of", "csv=p=0",
		videoPath,
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", videoPath, err)
	}

	count, err := strconv.Atoi(strings.TrimSpace(out.String()))
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: unexpected frame count %q", videoPath, out.String())
	}
	return count, nil
}

// extractFrame decodes a single frame by index. The written file is checked
// because ffmpeg exits zero even when the selected frame produced no output.
func (e *FrameExtractor) extractFrame(ctx context.Context, videoPath string, index int, outPath string) error {
	cmd := exec.CommandContext(ctx, e.ffmpegPath,
		"-y",
		"-i", videoPath,
		"-vf", fmt.Sprintf("select=eq(n\\,%d)", index),
		"-frames:v", "1",
		outPath,
	)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg frame %d of %s: %w", index, videoPath, err)
	}

	info, err := os.Stat(outPath)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("ffmpeg frame %d of %s: empty output", index, videoPath)
	}
	return nil
}
