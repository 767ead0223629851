package parser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/pricetracker/internal/domain"
	"github.com/jonesrussell/pricetracker/internal/logger"
	"github.com/jonesrussell/pricetracker/internal/parser"
)

type stubConfigStore struct {
	configs map[string]*domain.ParserConfig
}

func (s *stubConfigStore) GetByDomain(_ context.Context, siteDomain string) (*domain.ParserConfig, error) {
	config, ok := s.configs[siteDomain]
	if !ok {
		return nil, parser.ErrConfigNotFound
	}
	return config, nil
}

func TestRegistry_Resolve(t *testing.T) {
	store := &stubConfigStore{configs: map[string]*domain.ParserConfig{
		"shop.example.com": testParserConfig(),
	}}
	registry := parser.NewRegistry(store, logger.NewNoOp())

	t.Run("site strategy wins", func(t *testing.T) {
		strategy, err := registry.Resolve(context.Background(), "amazon.fr")
		require.NoError(t, err)
		assert.Equal(t, "amazon", strategy.Name())
	})

	t.Run("case insensitive", func(t *testing.T) {
		strategy, err := registry.Resolve(context.Background(), "Amazon.FR")
		require.NoError(t, err)
		assert.Equal(t, "amazon", strategy.Name())
	})

	t.Run("generic from config store", func(t *testing.T) {
		strategy, err := registry.Resolve(context.Background(), "shop.example.com")
		require.NoError(t, err)
		assert.Equal(t, "generic:shop.example.com", strategy.Name())
		assert.False(t, strategy.RequiresBrowser())
	})

	t.Run("unknown domain", func(t *testing.T) {
		_, err := registry.Resolve(context.Background(), "unknown.example.org")
		require.ErrorIs(t, err, parser.ErrNoStrategy)
	})
}

func TestRegistry_DisabledConfig(t *testing.T) {
	config := testParserConfig()
	config.IsActive = false
	store := &stubConfigStore{configs: map[string]*domain.ParserConfig{
		"shop.example.com": config,
	}}
	registry := parser.NewRegistry(store, logger.NewNoOp())

	_, err := registry.Resolve(context.Background(), "shop.example.com")
	require.ErrorIs(t, err, parser.ErrNoStrategy)
}

func TestRegistry_Register(t *testing.T) {
	registry := parser.NewRegistry(&stubConfigStore{}, logger.NewNoOp())
	registry.Register("custom.example.com", parser.NewAmazonStrategy())

	strategy, err := registry.Resolve(context.Background(), "custom.example.com")
	require.NoError(t, err)
	assert.Equal(t, "amazon", strategy.Name())
}
