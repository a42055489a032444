package whisper

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indictrans/video-transcriber/internal/transcript"
)

type stubModel struct {
	size Size
}

func (m *stubModel) Size() Size { return m.size }

func (m *stubModel) Transcribe(context.Context, string, string) (*transcript.Result, error) {
	return &transcript.Result{Text: "stub"}, nil
}

func TestLoader_SameSizeReturnsSameInstance(t *testing.T) {
	var loads int
	loader := NewLoader(func(size Size) (Model, error) {
		loads++
		return &stubModel{size: size}, nil
	}, 0)

	first, err := loader.Load(context.Background(), SizeTiny)
	require.NoError(t, err)
	second, err := loader.Load(context.Background(), SizeTiny)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, loads)
}

func TestLoader_DistinctSizesRetainedConcurrently(t *testing.T) {
	loader := NewLoader(func(size Size) (Model, error) {
		return &stubModel{size: size}, nil
	}, 0)

	tiny, err := loader.Load(context.Background(), SizeTiny)
	require.NoError(t, err)
	base, err := loader.Load(context.Background(), SizeBase)
	require.NoError(t, err)

	assert.NotSame(t, tiny, base)
	assert.ElementsMatch(t, []Size{SizeTiny, SizeBase}, loader.Resident())
}

func TestLoader_RejectsUnknownSize(t *testing.T) {
	loader := NewLoader(func(size Size) (Model, error) {
		return &stubModel{size: size}, nil
	}, 0)

	_, err := loader.Load(context.Background(), Size("gigantic"))
	require.Error(t, err)
}

func TestLoader_PropagatesFactoryError(t *testing.T) {
	loadErr := errors.New("out of memory")
	loader := NewLoader(func(Size) (Model, error) {
		return nil, loadErr
	}, 0)

	_, err := loader.Load(context.Background(), SizeLarge)
	require.Error(t, err)
	assert.ErrorIs(t, err, loadErr)

	// A failed load must not poison the cache.
	assert.Empty(t, loader.Resident())
}

func TestLoader_EvictsLeastRecentlyUsed(t *testing.T) {
	var loads []Size
	loader := NewLoader(func(size Size) (Model, error) {
		loads = append(loads, size)
		return &stubModel{size: size}, nil
	}, 2)

	ctx := context.Background()
	_, err := loader.Load(ctx, SizeTiny)
	require.NoError(t, err)
	_, err = loader.Load(ctx, SizeBase)
	require.NoError(t, err)

	// Touch tiny so base becomes the eviction candidate.
	_, err = loader.Load(ctx, SizeTiny)
	require.NoError(t, err)

	_, err = loader.Load(ctx, SizeSmall)
	require.NoError(t, err)

	assert.ElementsMatch(t, []Size{SizeTiny, SizeSmall}, loader.Resident())

	// Reloading base pays the load cost again.
	_, err = loader.Load(ctx, SizeBase)
	require.NoError(t, err)
	assert.Equal(t, []Size{SizeTiny, SizeBase, SizeSmall, SizeBase}, loads)
}

func TestLoader_ConcurrentLoadsShareOneFactoryCall(t *testing.T) {
	var mu sync.Mutex
	var loads int
	started := make(chan struct{})
	release := make(chan struct{})

	loader := NewLoader(func(size Size) (Model, error) {
		mu.Lock()
		loads++
		first := loads == 1
		mu.Unlock()
		if first {
			close(started)
			<-release
		}
		return &stubModel{size: size}, nil
	}, 0)

	const workers = 8
	results := make([]Model, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			model, err := loader.Load(context.Background(), SizeMedium)
			assert.NoError(t, err)
			results[i] = model
		}(i)
	}

	<-started
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, loads)
	for i := 1; i < workers; i++ {
		assert.Same(t, results[0], results[i])
	}
}
