package credential

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tqbui/vqagen/internal/domain"
)

type stubGenerator struct {
	key   string
	model string
}

func (s *stubGenerator) Generate(ctx context.Context, imagePath, prompt string) (string, error) {
	return "", nil
}

func (s *stubGenerator) ModelName() string {
	return s.model
}

func stubFactory(key, modelName string) (Generator, error) {
	return &stubGenerator{key: key, model: modelName}, nil
}

func TestNewPool_RequiresKeys(t *testing.T) {
	pool, err := NewPool(nil, "gemini-2.0-flash", stubFactory)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoCredentials))
	assert.Nil(t, pool)
}

func TestPool_NextKeyRoundRobinWraps(t *testing.T) {
	pool, err := NewPool([]string{"k1", "k2", "k3"}, "m", stubFactory)
	require.NoError(t, err)

	got := []string{
		pool.NextKey(), pool.NextKey(), pool.NextKey(),
		pool.NextKey(), pool.NextKey(),
	}
	assert.Equal(t, []string{"k1", "k2", "k3", "k1", "k2"}, got)
}

func TestPool_ModelNameSharedAndMutable(t *testing.T) {
	pool, err := NewPool([]string{"k1"}, "gemini-2.0-flash", stubFactory)
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-flash", pool.ModelName())

	pool.SetModelName("gemini-2.5-flash")
	assert.Equal(t, "gemini-2.5-flash", pool.ModelName())
}

func TestPool_HandlerAdvancesRotation(t *testing.T) {
	pool, err := NewPool([]string{"k1", "k2"}, "m", stubFactory)
	require.NoError(t, err)

	first, err := pool.Handler()
	require.NoError(t, err)
	second, err := pool.Handler()
	require.NoError(t, err)
	third, err := pool.Handler()
	require.NoError(t, err)

	assert.Equal(t, "k1", first.(*stubGenerator).key)
	assert.Equal(t, "k2", second.(*stubGenerator).key)
	assert.Equal(t, "k1", third.(*stubGenerator).key)
}

func TestPool_HandlerUsesActiveModel(t *testing.T) {
	pool, err := NewPool([]string{"k1"}, "old-model", stubFactory)
	require.NoError(t, err)

	before, err := pool.Handler()
	require.NoError(t, err)
	assert.Equal(t, "old-model", before.ModelName())

	pool.SetModelName("new-model")

	after, err := pool.Handler()
	require.NoError(t, err)
	assert.Equal(t, "new-model", after.ModelName())
	// Handlers already minted keep the model they were built with.
	assert.Equal(t, "old-model", before.ModelName())
}

func TestPool_Size(t *testing.T) {
	pool, err := NewPool([]string{"k1", "k2"}, "m", stubFactory)
	require.NoError(t, err)
	assert.Equal(t, 2, pool.Size())
}
