package params

import "path/filepath"

// Required fails when a declared-required string field is empty.
func Required(name, value string) error {
	if value == "" {
		return &MissingParameterError{Name: name}
	}
	return nil
}

// DivisibleBy fails unless value is a multiple of divisor. The error carries
// the largest valid multiple not exceeding the value.
func DivisibleBy(name string, value, divisor int) error {
	if value%divisor != 0 {
		return &DimensionError{
			Name:    name,
			Value:   value,
			Divisor: divisor,
			Nearest: value - value%divisor,
		}
	}
	return nil
}

// FrameCount fails unless value-1 is a multiple of divisor. Video models
// require frame counts of the form n*divisor+1.
func FrameCount(name string, value, divisor int) error {
	if (value-1)%divisor != 0 {
		return &FrameCountError{
			Name:    name,
			Value:   value,
			Divisor: divisor,
			Nearest: (value-1)/divisor*divisor + 1,
		}
	}
	return nil
}

// WithinRange fails when value lies outside [min, max] inclusive.
func WithinRange(name string, value, min, max int) error {
	if value < min || value > max {
		return &RangeError{Name: name, Value: value, Min: min, Max: max}
	}
	return nil
}

// NormalizePath cleans a caller-supplied filesystem path. Empty input stays
// empty so missing optional paths keep their zero value.
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Clean(path)
}
