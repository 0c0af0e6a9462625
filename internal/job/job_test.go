package job_test

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"genforge/internal/artifact"
	"genforge/internal/params"
	"genforge/internal/pipeline"
)

// --- Mock pipeline ---

type mockHandle struct {
	mu       sync.Mutex
	invokes  []pipeline.InvokeRequest
	reloads  [][]params.Lora
	releases int
	artifact []byte
	err      error
}

func (h *mockHandle) Invoke(_ context.Context, req pipeline.InvokeRequest) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.invokes = append(h.invokes, req)
	if h.err != nil {
		return nil, h.err
	}
	return h.artifact, nil
}

func (h *mockHandle) ReloadAdapters(_ context.Context, loras []params.Lora) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reloads = append(h.reloads, loras)
	return nil
}

func (h *mockHandle) ReleaseMemory() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.releases++
}

type mockBuilder struct {
	mu     sync.Mutex
	specs  []pipeline.Spec
	handle *mockHandle
	err    error
}

func (b *mockBuilder) Build(_ context.Context, spec pipeline.Spec) (pipeline.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.specs = append(b.specs, spec)
	if b.err != nil {
		return nil, b.err
	}
	return b.handle, nil
}

func (b *mockBuilder) builds() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.specs)
}

func newMockBuilder(artifactBytes []byte) (*mockBuilder, *mockHandle) {
	h := &mockHandle{artifact: artifactBytes}
	return &mockBuilder{handle: h}, h
}

// --- helpers ---

func writePNG(t *testing.T, path string, width, height int) string {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, width, height))))
	return path
}

func writeSidecar(t *testing.T, imagePath, content string) {
	t.Helper()
	base := imagePath[:len(imagePath)-len(filepath.Ext(imagePath))]
	require.NoError(t, os.WriteFile(base+".json", []byte(content), 0o644))
}

func newTestWriter() *artifact.Writer {
	return artifact.NewWriter()
}

func rawLoras(t *testing.T, doc string) []json.RawMessage {
	t.Helper()
	var out []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(doc), &out))
	return out
}

var errPipelineBoom = errors.New("device out of memory")
