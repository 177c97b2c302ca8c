package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-tickets/internal/domain"
)

const systemPrompt = `You triage customer complaints for a marketplace.
Answer with exactly one of: "Supplier Issue", "Logistics Issue", "Customer Issue".
Supplier Issue: damaged, defective, wrong or missing items, wrong color or size.
Logistics Issue: late delivery, courier problems.
Customer Issue: anything else.`

// Completer sends a prompt to a text model and returns its answer.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Cache stores normalized answers keyed by message hash.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RemoteClassifier asks a hosted model for the category and normalizes the answer.
type RemoteClassifier struct {
	completer Completer
	cache     Cache
	cacheTTL  time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// RemoteOption configures a RemoteClassifier.
type RemoteOption func(*RemoteClassifier)

// WithCache enables answer caching.
func WithCache(cache Cache, ttl time.Duration) RemoteOption {
	return func(r *RemoteClassifier) {
		r.cache = cache
		r.cacheTTL = ttl
	}
}

// WithTimeout bounds each remote call. Default: 15s.
func WithTimeout(d time.Duration) RemoteOption {
	return func(r *RemoteClassifier) { r.timeout = d }
}

// WithLogger sets the logger used for cache warnings.
func WithLogger(logger *zap.Logger) RemoteOption {
	return func(r *RemoteClassifier) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRemote builds a RemoteClassifier around completer.
func NewRemote(completer Completer, opts ...RemoteOption) *RemoteClassifier {
	r := &RemoteClassifier{
		completer: completer,
		timeout:   15 * time.Second,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Classify implements Classifier.
func (r *RemoteClassifier) Classify(ctx context.Context, text string) (domain.Category, error) {
	key := cacheKey(text)
	if r.cache != nil {
		if cached, ok, err := r.cache.Get(ctx, key); err != nil {
			r.logger.Warn("classifier cache read failed", zap.Error(err))
		} else if ok {
			return domain.Category(cached), nil
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	answer, err := r.completer.Complete(callCtx, systemPrompt, "Complaint: "+text)
	if err != nil {
		return domain.CategoryUnknown, fmt.Errorf("remote classify: %w", err)
	}
	if strings.TrimSpace(answer) == "" {
		return domain.CategoryUnknown, errors.New("remote classify: empty response")
	}

	category := Normalize(answer)
	if r.cache != nil {
		if err := r.cache.Set(ctx, key, string(category), r.cacheTTL); err != nil {
			r.logger.Warn("classifier cache write failed", zap.Error(err))
		}
	}
	return category, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(text))))
	return "classifier:" + hex.EncodeToString(sum[:])
}

// AnthropicCompleter calls the Anthropic Messages API.
type AnthropicCompleter struct {
	client anthropic.Client
	model  string
}

// NewAnthropicCompleter builds a completer for model using apiKey.
func NewAnthropicCompleter(apiKey, model string, opts ...option.RequestOption) *AnthropicCompleter {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(1)}, opts...)
	return &AnthropicCompleter{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

// Complete implements Completer.
func (a *AnthropicCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 32,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}
	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", errors.New("no text content in anthropic response")
}

// RedisCache stores classifier answers in Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}
