package params

import (
	"regexp"
	"strings"
)

var templateKey = regexp.MustCompile(`\{\{(\w+)\}\}`)

// ExpandTemplate replaces every {{key}} placeholder in prompt with each value
// from variations, producing the cartesian product over all keys that appear
// in the prompt. Keys expand in first-occurrence order and values in input
// order. Keys without provided variations, and a prompt without placeholders,
// leave the prompt unchanged as a single-element result.
func ExpandTemplate(prompt string, variations map[string][]string) []string {
	if prompt == "" || len(variations) == 0 {
		return []string{prompt}
	}

	matches := templateKey.FindAllStringSubmatch(prompt, -1)
	if len(matches) == 0 {
		return []string{prompt}
	}

	var keys []string
	seen := map[string]bool{}
	for _, m := range matches {
		k := m[1]
		if seen[k] || len(variations[k]) == 0 {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return []string{prompt}
	}

	results := []string{prompt}
	for _, k := range keys {
		placeholder := "{{" + k + "}}"
		var next []string
		for _, partial := range results {
			for _, v := range variations[k] {
				next = append(next, strings.ReplaceAll(partial, placeholder, v))
			}
		}
		results = next
	}
	return results
}
