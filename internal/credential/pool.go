package credential

import (
	"context"
	"sync"

	"github.com/tqbui/vqagen/internal/domain"
)

// Generator is the external API client contract: generate text from an
// image and a prompt, or fail with an error whose message may carry a
// quota-exhaustion phrase.
type Generator interface {
	Generate(ctx context.Context, imagePath, prompt string) (string, error)
	ModelName() string
}

// HandlerFactory builds an API client bound to one key and model.
type HandlerFactory func(key, modelName string) (Generator, error)

// Pool holds an ordered set of API keys, a round-robin cursor, and the
// shared active model name. Handler creation advances the cursor, so
// every freshly minted handler is bound to the next key in rotation.
type Pool struct {
	mu        sync.Mutex
	keys      []string
	cursor    int
	modelName string
	factory   HandlerFactory
}

// NewPool creates a pool over the given keys. The key order is
// preserved; rotation wraps at the end of the list.
func NewPool(keys []string, modelName string, factory HandlerFactory) (*Pool, error) {
	if len(keys) == 0 {
		return nil, domain.ErrNoCredentials
	}
	return &Pool{
		keys:      keys,
		modelName: modelName,
		factory:   factory,
	}, nil
}

// NextKey returns the key under the cursor and advances it, wrapping at
// the end of the list.
func (p *Pool) NextKey() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := p.keys[p.cursor]
	p.cursor = (p.cursor + 1) % len(p.keys)
	return key
}

// ModelName returns the shared active model identifier.
func (p *Pool) ModelName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.modelName
}

// SetModelName replaces the shared active model identifier. All
// handlers minted afterwards are bound to the new model; handlers
// already held by workers keep the one they were built with.
func (p *Pool) SetModelName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modelName = name
}

// Handler mints a new API client bound to the next key in rotation and
// the active model. Workers call this once at startup and again after
// every quota failure.
func (p *Pool) Handler() (Generator, error) {
	return p.factory(p.NextKey(), p.ModelName())
}

// Size returns the number of keys in the pool.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}
