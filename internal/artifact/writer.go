// Package artifact persists produced media and the JSON sidecars describing
// how each artifact was made.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Writer persists artifacts under timestamp-based names. Names collide when
// two artifacts share prefix, suffix, and second — an accepted limitation of
// the naming scheme.
type Writer struct {
	// now is swappable for tests.
	now func() time.Time
}

// NewWriter returns a Writer using the system clock.
func NewWriter() *Writer {
	return &Writer{now: time.Now}
}

// Save writes data to [prefix-]<unix_ts>[-suffix].<ext> inside folder,
// creating the folder if needed, and returns the full path.
func (w *Writer) Save(folder, prefix, suffix, ext string, data []byte) (string, error) {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("create output folder: %w", err)
	}

	var parts []string
	if prefix != "" {
		parts = append(parts, prefix)
	}
	parts = append(parts, strconv.FormatInt(w.now().Unix(), 10))
	if suffix != "" {
		parts = append(parts, suffix)
	}

	path := filepath.Join(folder, strings.Join(parts, "-")+"."+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

// SaveBeside writes data next to source as <base>_upscaled_<unix_ts>.png and
// returns the full path. Upscaled outputs live with their originals so
// sidecar fallback keeps working.
func (w *Writer) SaveBeside(source string, data []byte) (string, error) {
	base := strings.TrimSuffix(source, filepath.Ext(source))
	path := fmt.Sprintf("%s_upscaled_%d.png", base, w.now().Unix())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

// WriteSidecar writes the resolved-parameter snapshot as <base>.json next to
// the artifact. Sidecars are written once and never mutated.
func (w *Writer) WriteSidecar(artifactPath string, snapshot map[string]any) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sidecar: %w", err)
	}

	base := strings.TrimSuffix(artifactPath, filepath.Ext(artifactPath))
	if err := os.WriteFile(base+".json", data, 0o644); err != nil {
		return fmt.Errorf("write sidecar: %w", err)
	}
	return nil
}

// Timestamp renders the local time as ISO-8601 with millisecond precision and
// the timezone abbreviation in parentheses.
func (w *Writer) Timestamp() string {
	now := w.now()
	iso := now.Format("2006-01-02T15:04:05.000-07:00")
	if abbr, _ := now.Zone(); abbr != "" {
		return fmt.Sprintf("%s (%s)", iso, abbr)
	}
	return iso
}
