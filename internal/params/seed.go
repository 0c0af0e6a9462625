package params

import (
	"encoding/json"
	"hash/fnv"
	"math/rand/v2"
	"strconv"
	"strings"
)

const seedBound = int64(1) << 31

// Seed is a caller-supplied generation seed. It accepts a JSON number or a
// string; absent, empty, and -1 all mean "pick a random seed".
type Seed struct {
	raw string
	set bool
}

func (s *Seed) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.raw = str
	} else {
		s.raw = strings.TrimSpace(string(data))
	}
	s.set = s.raw != "" && s.raw != "null"
	return nil
}

// Resolve produces the effective seed in [0, 2^31). Unset, empty, and -1
// resolve to a fresh random seed. Numeric strings resolve to their value.
// Anything else hashes with FNV-1a so the same string always maps to the same
// seed, across calls and across process restarts.
func (s Seed) Resolve() int64 {
	if !s.set || s.raw == "-1" {
		return rand.Int64N(seedBound)
	}
	if n, err := strconv.ParseInt(s.raw, 10, 64); err == nil {
		return n
	}
	h := fnv.New32a()
	h.Write([]byte(s.raw))
	return int64(h.Sum32()) % seedBound
}
