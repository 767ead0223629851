package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jonesrussell/pricetracker/internal/domain"
	"github.com/jonesrussell/pricetracker/internal/logger"
)

// ConfigStore loads per-domain parser configurations. Implemented by the
// parser config repository.
type ConfigStore interface {
	GetByDomain(ctx context.Context, siteDomain string) (*domain.ParserConfig, error)
}

// ErrConfigNotFound is returned by ConfigStore implementations when no
// configuration row exists for a domain.
var ErrConfigNotFound = errors.New("parser config not found")

// Registry resolves a normalized domain to an extraction strategy.
// Site-specific strategies are checked first, then the config store is
// consulted for a generic configuration.
type Registry struct {
	configs ConfigStore
	logger  logger.Interface

	mu    sync.RWMutex
	sites map[string]Strategy
}

// NewRegistry creates a registry with the built-in site strategies
// registered.
func NewRegistry(configs ConfigStore, log logger.Interface) *Registry {
	registry := &Registry{
		configs: configs,
		logger:  log.WithComponent("parser.registry"),
		sites:   make(map[string]Strategy),
	}

	amazon := NewAmazonStrategy()
	for _, siteDomain := range []string{
		"amazon.fr",
		"amazon.com",
		"amazon.de",
		"amazon.nl",
		"amazon.co.uk",
		"amazon.com.be",
	} {
		registry.Register(siteDomain, amazon)
	}

	registry.Register("cdiscount.com", cdiscountStrategy())
	registry.Register("fnac.com", fnacStrategy())
	registry.Register("boulanger.com", boulangerStrategy())
	registry.Register("bol.com", bolStrategy())

	coolblue := coolblueStrategy()
	registry.Register("coolblue.be", coolblue)
	registry.Register("coolblue.nl", coolblue)

	return registry
}

// Register binds a site strategy to a normalized domain, replacing any
// previous binding.
func (r *Registry) Register(siteDomain string, strategy Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sites[strings.ToLower(siteDomain)] = strategy
}

// Resolve returns the strategy for a normalized domain. Resolution order
// is fixed: a registered site strategy wins over a stored configuration.
// ErrNoStrategy is returned when neither exists.
func (r *Registry) Resolve(ctx context.Context, siteDomain string) (Strategy, error) {
	siteDomain = strings.ToLower(siteDomain)

	r.mu.RLock()
	strategy, ok := r.sites[siteDomain]
	r.mu.RUnlock()
	if ok {
		return strategy, nil
	}

	config, err := r.configs.GetByDomain(ctx, siteDomain)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoStrategy, siteDomain)
		}
		return nil, fmt.Errorf("resolve strategy for %s: %w", siteDomain, err)
	}
	if !config.IsActive {
		r.logger.Debug("Parser config is disabled", "domain", siteDomain)
		return nil, fmt.Errorf("%w: %s", ErrNoStrategy, siteDomain)
	}

	generic, err := NewGenericStrategy(config)
	if err != nil {
		return nil, fmt.Errorf("resolve strategy for %s: %w", siteDomain, err)
	}
	return generic, nil
}
