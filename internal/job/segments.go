package job

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"genforge/internal/params"
	"genforge/internal/pipeline"
)

// FrameSource pulls a continuation frame out of a finished video.
// *video.FrameExtractor is the production implementation.
type FrameSource interface {
	ExtractLastFrame(ctx context.Context, videoPath string) (string, error)
}

// VideoJoiner concatenates videos into one file. *video.Concatenator is the
// production implementation.
type VideoJoiner interface {
	Concat(ctx context.Context, videoPaths []string, outPath string) error
}

// SegmentRunner chains video-generation jobs: segment 0 is the base, later
// segments inherit its fields, and a segment without its own source image
// continues from the last frame of the previous segment's video. All segment
// outputs are concatenated into one combined file at the end.
type SegmentRunner struct {
	video  *VideoRunner
	frames FrameSource
	concat VideoJoiner
	now    func() time.Time
}

// NewSegmentRunner creates a SegmentRunner.
func NewSegmentRunner(videoRunner *VideoRunner, frames FrameSource, concat VideoJoiner) *SegmentRunner {
	return &SegmentRunner{
		video:  videoRunner,
		frames: frames,
		concat: concat,
		now:    time.Now,
	}
}

// Run executes the segments strictly in order, carrying the pipeline handle
// from one segment to the next so only the adapter set reloads per segment.
// The result lists every artifact in production order, with the concatenated
// file appended when at least two segments produced video.
func (r *SegmentRunner) Run(ctx context.Context, segments []map[string]any) ([]string, error) {
	if len(segments) == 0 {
		return nil, &params.MissingParameterError{Name: "segments"}
	}

	base := segments[0]
	var all []string
	var carried pipeline.Handle
	lastVideo := ""

	for i, segment := range segments {
		merged := segment
		if i > 0 {
			merged = make(map[string]any, len(base)+len(segment))
			for k, v := range base {
				merged[k] = v
			}
			for k, v := range segment {
				merged[k] = v
			}
		}

		req, err := decodeSegment(i, merged)
		if err != nil {
			return all, err
		}

		p, err := params.ResolveVideo(req)
		if err != nil {
			return all, fmt.Errorf("segment %d: %w", i, err)
		}

		// Continue from the previous segment's final frame when this segment
		// brings no source image of its own. A source inherited from the base
		// segment through the merge does not count as the segment's own.
		if i > 0 && !ownSource(segment) && lastVideo != "" {
			framePath, err := r.frames.ExtractLastFrame(ctx, lastVideo)
			if err != nil {
				return all, err
			}
			p.SourceImages = []string{framePath}
		}

		files, handle, err := r.video.RunWithHandle(ctx, p, carried)
		carried = handle
		all = append(all, files...)
		if err != nil {
			return all, fmt.Errorf("segment %d: %w", i, err)
		}

		for _, f := range files {
			if strings.HasSuffix(f, ".mp4") {
				lastVideo = f
			}
		}
	}

	combined, err := r.concatenate(ctx, all)
	if err != nil {
		return all, err
	}
	if combined != "" {
		all = append(all, combined)
	}
	return all, nil
}

// concatenate joins all produced videos in segment order. Fewer than two
// videos means nothing to join.
func (r *SegmentRunner) concatenate(ctx context.Context, files []string) (string, error) {
	var videos []string
	for _, f := range files {
		if strings.HasSuffix(f, ".mp4") {
			videos = append(videos, f)
		}
	}
	if len(videos) < 2 {
		return "", nil
	}

	outPath := filepath.Join(filepath.Dir(videos[0]),
		fmt.Sprintf("%d-combined.mp4", r.now().Unix()))
	if err := r.concat.Concat(ctx, videos, outPath); err != nil {
		return "", err
	}
	return outPath, nil
}

// ownSource reports whether a segment's own override dict supplies a source
// image.
func ownSource(segment map[string]any) bool {
	switch v := segment["input_image_path"].(type) {
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	}
	return false
}

// decodeSegment converts a merged override map into a video request.
func decodeSegment(index int, merged map[string]any) (params.VideoRequest, error) {
	var req params.VideoRequest
	data, err := json.Marshal(merged)
	if err != nil {
		return req, fmt.Errorf("segment %d: %w", index, err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("%w: segment %d: %v", params.ErrValidation, index, err)
	}
	return req, nil
}
