package params_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genforge/internal/params"
)

func rawList(t *testing.T, doc string) []json.RawMessage {
	t.Helper()
	var out []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(doc), &out))
	return out
}

func TestNormalizeLoras_Empty(t *testing.T) {
	loras, err := params.NormalizeLoras(nil, 70)
	require.NoError(t, err)
	assert.Nil(t, loras)
}

func TestNormalizeLoras_BareString(t *testing.T) {
	loras, err := params.NormalizeLoras(rawList(t, `["/models/detail.safetensors"]`), 70)
	require.NoError(t, err)
	require.Len(t, loras, 1)
	assert.Equal(t, params.Lora{Path: "/models/detail.safetensors", Strength: 70}, loras[0])
}

func TestNormalizeLoras_Object(t *testing.T) {
	loras, err := params.NormalizeLoras(
		rawList(t, `[{"path": "/models/a.safetensors", "strength": 35}, {"path": "/models/b.safetensors"}]`), 70)
	require.NoError(t, err)
	require.Len(t, loras, 2)
	assert.Equal(t, params.Lora{Path: "/models/a.safetensors", Strength: 35}, loras[0])
	assert.Equal(t, params.Lora{Path: "/models/b.safetensors", Strength: 70}, loras[1])
}

func TestNormalizeLoras_Invalid(t *testing.T) {
	cases := []struct {
		doc     string
		message string
	}{
		{`[""]`, "loras[0]: 'path' must be a non-empty string"},
		{`[{"strength": 50}]`, "loras[0]: 'path' is required"},
		{`[{"path": ""}]`, "loras[0]: 'path' must be a non-empty string"},
		{`[{"path": "/a", "strength": "high"}]`, "loras[0]: 'strength' must be an integer"},
		{`[{"path": "/a", "strength": 101}]`, "loras[0]: 'strength' must be between 0 and 100"},
		{`[{"path": "/a", "strength": -1}]`, "loras[0]: 'strength' must be between 0 and 100"},
		{`[12]`, "loras[0]: must be a string or object"},
		{`["/ok.safetensors", {"path": null}]`, "loras[1]: 'path' is required"},
	}

	for _, tc := range cases {
		_, err := params.NormalizeLoras(rawList(t, tc.doc), 70)
		require.Error(t, err, tc.doc)
		assert.True(t, errors.Is(err, params.ErrValidation), tc.doc)
		assert.Equal(t, tc.message, err.Error(), tc.doc)
	}
}
