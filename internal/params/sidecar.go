package params

import (
	"encoding/json"
	"os"
	"regexp"
	"strings"
)

var upscaledMarker = regexp.MustCompile(`^(.*)_upscaled_\d+$`)

// SidecarPath returns the metadata file expected next to an image. Upscaled
// outputs share the sidecar of the image they came from, so a trailing
// _upscaled_<timestamp> marker is stripped first.
func SidecarPath(imagePath string) string {
	base := strings.TrimSuffix(imagePath, ".png")
	base = strings.TrimSuffix(base, ".PNG")
	if m := upscaledMarker.FindStringSubmatch(base); m != nil {
		base = m[1]
	}
	return base + ".json"
}

// SidecarValue looks up a string field in the sidecar JSON co-located with an
// image. Missing files, unreadable JSON, and empty values all report not
// found; sidecar lookups are a fallback, never an error source.
func SidecarValue(imagePath, key string) (string, bool) {
	data, err := os.ReadFile(SidecarPath(imagePath))
	if err != nil {
		return "", false
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", false
	}

	value, ok := doc[key].(string)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}
