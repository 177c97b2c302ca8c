package classifier

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-tickets/internal/config"
)

// New builds the configured classifier wrapped in Safe. redisClient may be
// nil, in which case remote answers are not cached.
func New(cfg config.ClassifierConfig, redisClient *redis.Client, logger *zap.Logger) (*SafeClassifier, error) {
	switch cfg.Mode {
	case config.ClassifierModeRemote:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("remote classifier requires ANTHROPIC_API_KEY")
		}
		opts := []RemoteOption{WithTimeout(cfg.Timeout()), WithLogger(logger)}
		if redisClient != nil && cfg.CacheTTL() > 0 {
			opts = append(opts, WithCache(NewRedisCache(redisClient), cfg.CacheTTL()))
		}
		return Safe(NewRemote(NewAnthropicCompleter(cfg.APIKey, cfg.Model), opts...), logger), nil
	default:
		rules := DefaultRules()
		if cfg.RulesPath != "" {
			loaded, err := LoadRules(cfg.RulesPath)
			if err != nil {
				return nil, err
			}
			rules = loaded
		}
		return Safe(NewKeyword(rules), logger), nil
	}
}
