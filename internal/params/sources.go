package params

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// StringOrList accepts a JSON string or array of strings. Non-string array
// elements are dropped, matching the lenient shape of the job payloads.
type StringOrList []string

func (s *StringOrList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*s = nil
		} else {
			*s = []string{single}
		}
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	var out []string
	for _, item := range items {
		var str string
		// null unmarshals into a string as a no-op; skip it with the other
		// empty entries.
		if err := json.Unmarshal(item, &str); err == nil && str != "" {
			out = append(out, str)
		}
	}
	*s = out
	return nil
}

// First returns the first value or the empty string.
func (s StringOrList) First() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// ResolveSources expands the raw source-image value into concrete PNG paths.
// A directory contributes every .png directly inside it in sorted order.
// Non-existent and non-PNG paths are dropped silently; the caller decides
// whether an empty result is a problem.
func ResolveSources(input StringOrList) []string {
	var paths []string
	for _, cand := range input {
		if cand == "" {
			continue
		}
		abs := NormalizePath(cand)

		info, err := os.Stat(abs)
		if err != nil {
			continue
		}

		if info.IsDir() {
			entries, err := os.ReadDir(abs)
			if err != nil {
				continue
			}
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				if isPNG(entry.Name()) {
					paths = append(paths, filepath.Join(abs, entry.Name()))
				}
			}
			continue
		}

		if isPNG(abs) {
			paths = append(paths, abs)
		}
	}
	return paths
}

func isPNG(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".png")
}
