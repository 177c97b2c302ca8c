package classifier

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/complaint-tickets/internal/domain"
)

// Rules lists the keywords for each category. Supplier keywords win over
// logistics keywords; text matching neither is a customer issue.
type Rules struct {
	Supplier  []string `yaml:"supplier"`
	Logistics []string `yaml:"logistics"`
}

// DefaultRules are the built-in keyword sets.
func DefaultRules() Rules {
	return Rules{
		Supplier:  []string{"damage", "wrong", "missing", "color", "defect"},
		Logistics: []string{"late", "courier", "delivery"},
	}
}

// LoadRules reads keyword rules from a YAML file of the form
//
//	supplier: [damage, wrong]
//	logistics: [late]
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read classifier rules %s: %w", path, err)
	}
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse classifier rules %s: %w", path, err)
	}
	if len(rules.Supplier) == 0 && len(rules.Logistics) == 0 {
		return Rules{}, fmt.Errorf("classifier rules %s: no keywords defined", path)
	}
	return rules, nil
}

// KeywordClassifier is the rule-based classifier. It is a pure function of
// its input and never returns an error.
type KeywordClassifier struct {
	supplier  []string
	logistics []string
}

// NewKeyword builds a KeywordClassifier from rules.
func NewKeyword(rules Rules) *KeywordClassifier {
	return &KeywordClassifier{
		supplier:  lowerAll(rules.Supplier),
		logistics: lowerAll(rules.Logistics),
	}
}

// Classify implements Classifier.
func (k *KeywordClassifier) Classify(_ context.Context, text string) (domain.Category, error) {
	return k.Category(text), nil
}

// Category returns the rule-based category of text.
func (k *KeywordClassifier) Category(text string) domain.Category {
	lower := strings.ToLower(text)
	if containsAny(lower, k.supplier) {
		return domain.CategorySupplierIssue
	}
	if containsAny(lower, k.logistics) {
		return domain.CategoryLogisticsIssue
	}
	return domain.CategoryCustomerIssue
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
