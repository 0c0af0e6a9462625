package params

import "encoding/json"

// Lora is one adapter applied to a pipeline at an integer strength in [0, 100].
type Lora struct {
	Path     string `json:"path"`
	Strength int    `json:"strength"`
}

// NormalizeLoras accepts the raw adapter list from a request. Each entry is
// either a bare path string, which takes the call-site default strength, or an
// object with path and optional strength.
func NormalizeLoras(raw []json.RawMessage, defaultStrength int) ([]Lora, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	loras := make([]Lora, 0, len(raw))
	for i, entry := range raw {
		var path string
		if err := json.Unmarshal(entry, &path); err == nil {
			if path == "" {
				return nil, &LoraError{Index: i, Reason: "'path' must be a non-empty string"}
			}
			loras = append(loras, Lora{Path: path, Strength: defaultStrength})
			continue
		}

		var obj struct {
			Path     *string          `json:"path"`
			Strength *json.RawMessage `json:"strength"`
		}
		if err := json.Unmarshal(entry, &obj); err != nil {
			return nil, &LoraError{Index: i, Reason: "must be a string or object"}
		}
		if obj.Path == nil {
			return nil, &LoraError{Index: i, Reason: "'path' is required"}
		}
		if *obj.Path == "" {
			return nil, &LoraError{Index: i, Reason: "'path' must be a non-empty string"}
		}

		strength := defaultStrength
		if obj.Strength != nil {
			if err := json.Unmarshal(*obj.Strength, &strength); err != nil {
				return nil, &LoraError{Index: i, Reason: "'strength' must be an integer"}
			}
		}
		if strength < 0 || strength > 100 {
			return nil, &LoraError{Index: i, Reason: "'strength' must be between 0 and 100"}
		}

		loras = append(loras, Lora{Path: *obj.Path, Strength: strength})
	}
	return loras, nil
}
