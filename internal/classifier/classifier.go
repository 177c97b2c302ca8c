// Package classifier assigns complaint categories from free text.
package classifier

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-tickets/internal/domain"
)

// Classifier maps complaint text to a category.
type Classifier interface {
	Classify(ctx context.Context, text string) (domain.Category, error)
}

// Func adapts a plain function to the Classifier interface.
type Func func(ctx context.Context, text string) (domain.Category, error)

// Classify calls f.
func (f Func) Classify(ctx context.Context, text string) (domain.Category, error) {
	return f(ctx, text)
}

// SafeClassifier never fails: errors degrade to CategoryUnknown.
type SafeClassifier struct {
	inner  Classifier
	logger *zap.Logger
}

// Safe wraps c so that any failure yields CategoryUnknown and a warning.
func Safe(c Classifier, logger *zap.Logger) *SafeClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SafeClassifier{inner: c, logger: logger}
}

// Classify returns the wrapped classifier's category, or CategoryUnknown with
// a warning wrapping domain.ErrClassification.
func (s *SafeClassifier) Classify(ctx context.Context, text string) (category domain.Category, warning error) {
	defer func() {
		if r := recover(); r != nil {
			category = domain.CategoryUnknown
			warning = fmt.Errorf("%w: panic: %v", domain.ErrClassification, r)
			s.logger.Warn("classifier panicked", zap.Any("panic", r))
		}
	}()

	category, err := s.inner.Classify(ctx, text)
	if err != nil {
		s.logger.Warn("classification degraded to unknown", zap.Error(err))
		return domain.CategoryUnknown, fmt.Errorf("%w: %v", domain.ErrClassification, err)
	}
	return category, nil
}

// Normalize maps a free-form answer to a category: anything mentioning
// "supplier" is a supplier issue, then "logistic", everything else is a
// customer issue.
func Normalize(answer string) domain.Category {
	lower := strings.ToLower(answer)
	switch {
	case strings.Contains(lower, "supplier"):
		return domain.CategorySupplierIssue
	case strings.Contains(lower, "logistic"):
		return domain.CategoryLogisticsIssue
	default:
		return domain.CategoryCustomerIssue
	}
}
