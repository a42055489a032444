package whisper

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/indictrans/video-transcriber/pkg/log"
)

// Factory builds a fresh model instance for a size.
type Factory func(size Size) (Model, error)

type cachedModel struct {
	model    Model
	lastUsed uint64
}

// Loader hands out model instances memoized by size. Concurrent requests for
// the same size share one load via singleflight, and the cache is bounded:
// when more than capacity sizes are resident the least recently used instance
// is evicted.
type Loader struct {
	factory  Factory
	capacity int

	mu     sync.Mutex
	models map[Size]*cachedModel
	clock  uint64

	group singleflight.Group
}

// NewLoader builds a loader around factory. capacity <= 0 means every size
// stays resident for the process lifetime.
func NewLoader(factory Factory, capacity int) *Loader {
	if capacity <= 0 {
		capacity = len(Sizes)
	}
	return &Loader{
		factory:  factory,
		capacity: capacity,
		models:   make(map[Size]*cachedModel),
	}
}

// Load returns the cached instance for size, loading it on first use. The
// same size always yields the same instance while it remains resident.
func (l *Loader) Load(ctx context.Context, size Size) (Model, error) {
	if _, err := ParseSize(string(size)); err != nil {
		return nil, err
	}

	if model, ok := l.touch(size); ok {
		return model, nil
	}

	ret, err, _ := l.group.Do(string(size), func() (any, error) {
		if model, ok := l.touch(size); ok {
			return model, nil
		}

		log.Info("Loading model %q", size)
		model, err := l.factory(size)
		if err != nil {
			return nil, fmt.Errorf("load model %s: %w", size, err)
		}

		l.insert(size, model)
		return model, nil
	})
	if err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return ret.(Model), nil
}

// Resident returns the sizes currently held in the cache.
func (l *Loader) Resident() []Size {
	l.mu.Lock()
	defer l.mu.Unlock()

	ret := make([]Size, 0, len(l.models))
	for size := range l.models {
		ret = append(ret, size)
	}
	return ret
}

func (l *Loader) touch(size Size) (Model, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.models[size]
	if !ok {
		return nil, false
	}
	l.clock++
	entry.lastUsed = l.clock
	return entry.model, true
}

func (l *Loader) insert(size Size, model Model) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.clock++
	l.models[size] = &cachedModel{model: model, lastUsed: l.clock}

	for len(l.models) > l.capacity {
		var oldest Size
		var oldestUsed uint64
		first := true
		for candidate, entry := range l.models {
			if candidate == size {
				continue
			}
			if first || entry.lastUsed < oldestUsed {
				oldest = candidate
				oldestUsed = entry.lastUsed
				first = false
			}
		}
		if first {
			break
		}
		log.Info("Evicting model %q from cache", oldest)
		delete(l.models, oldest)
	}
}
