// Package job orchestrates generation jobs: resolve parameters, acquire a
// pipeline through the single-slot cache, fan out over prompts, targets, and
// repeat counts, persist artifacts with sidecars, and release device memory
// on every exit path.
package job

import (
	"context"
	"fmt"

	"genforge/internal/pipeline"
)

// Cache key prefixes keep pipeline kinds from colliding on a shared model
// path.
const (
	cachePrefixImage   = "SDXL"
	cachePrefixUpscale = "SDXL UPSCALE"
	cachePrefixVideo   = "WAN"
)

// acquire returns the cached pipeline for spec or builds and caches a fresh
// one. The cache holds a single slot: a different key evicts the previous
// pipeline.
func acquire(ctx context.Context, builder pipeline.Builder, cache *pipeline.Cache, prefix string, spec pipeline.Spec) (pipeline.Handle, error) {
	key := pipeline.CacheKey(prefix, spec.ModelPath, spec.Loras)
	if handle, ok := cache.Get(key); ok {
		return handle, nil
	}

	handle, err := builder.Build(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("%w: build %s: %v", pipeline.ErrUpstream, spec.Kind, err)
	}
	cache.Set(key, handle)
	return handle, nil
}

// invokeOnce runs a single pipeline invocation with transient device memory
// reclaimed afterward whether or not the invocation succeeded.
func invokeOnce(ctx context.Context, handle pipeline.Handle, req pipeline.InvokeRequest) ([]byte, error) {
	defer handle.ReleaseMemory()

	data, err := handle.Invoke(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrUpstream, err)
	}
	return data, nil
}
