package classifier

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/complaint-tickets/internal/config"
	"github.com/spec-kit/complaint-tickets/internal/domain"
)

func TestKeywordClassifier(t *testing.T) {
	k := NewKeyword(DefaultRules())
	cases := []struct {
		text string
		want domain.Category
	}{
		{"Product arrived with DAMAGE on the sole", domain.CategorySupplierIssue},
		{"Wrong color received", domain.CategorySupplierIssue},
		{"One item missing from the box", domain.CategorySupplierIssue},
		{"Manufacturing defect on zipper", domain.CategorySupplierIssue},
		{"Arrived late", domain.CategoryLogisticsIssue},
		{"The courier was rude", domain.CategoryLogisticsIssue},
		{"Delivery never attempted", domain.CategoryLogisticsIssue},
		{"Wrong item and the delivery was late", domain.CategorySupplierIssue},
		{"I changed my mind", domain.CategoryCustomerIssue},
		{"", domain.CategoryCustomerIssue},
	}
	for _, tc := range cases {
		got, err := k.Classify(context.Background(), tc.text)
		if err != nil {
			t.Fatalf("Classify(%q) error: %v", tc.text, err)
		}
		if got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestKeywordClassifierDamageWithoutLogistics(t *testing.T) {
	k := NewKeyword(DefaultRules())
	for _, text := range []string{"damage", "heavy damage to box", "Damaged sole", "x damagex y"} {
		if got := k.Category(text); got != domain.CategorySupplierIssue {
			t.Errorf("Category(%q) = %q, want supplier issue", text, got)
		}
	}
}

func TestKeywordClassifierNeverUnknown(t *testing.T) {
	k := NewKeyword(DefaultRules())
	for _, text := range []string{"???", "\x00", strings.Repeat("a", 4096)} {
		if got := k.Category(text); got == domain.CategoryUnknown {
			t.Errorf("Category(%q) returned Unknown", text)
		}
	}
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := "supplier: [Broken, torn]\nlogistics: [parcel]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules error: %v", err)
	}
	k := NewKeyword(rules)
	if got := k.Category("broken parcel"); got != domain.CategorySupplierIssue {
		t.Fatalf("got %q, want supplier issue", got)
	}
	if got := k.Category("parcel lost"); got != domain.CategoryLogisticsIssue {
		t.Fatalf("got %q, want logistics issue", got)
	}
	if got := k.Category("damage"); got != domain.CategoryCustomerIssue {
		t.Fatalf("custom rules should replace defaults, got %q", got)
	}
}

func TestLoadRulesRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("supplier: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRules(path); err == nil {
		t.Fatal("expected error for empty rules")
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]domain.Category{
		"Supplier Issue":            domain.CategorySupplierIssue,
		"this is a SUPPLIER matter": domain.CategorySupplierIssue,
		"Logistics Issue":           domain.CategoryLogisticsIssue,
		"logistical delay":          domain.CategoryLogisticsIssue,
		"Customer Issue":            domain.CategoryCustomerIssue,
		"I am not sure":             domain.CategoryCustomerIssue,
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

type fakeCompleter struct {
	answer string
	err    error
	calls  int
}

func (f *fakeCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	f.calls++
	if _, ok := ctx.Deadline(); !ok {
		return "", errors.New("expected a deadline on remote calls")
	}
	return f.answer, f.err
}

type memCache struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func TestRemoteClassifierNormalizesAnswer(t *testing.T) {
	completer := &fakeCompleter{answer: "Logistics Issue."}
	r := NewRemote(completer, WithTimeout(time.Second))

	got, err := r.Classify(context.Background(), "box arrived two weeks after promise")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if got != domain.CategoryLogisticsIssue {
		t.Fatalf("got %q, want logistics issue", got)
	}
}

func TestRemoteClassifierUsesCache(t *testing.T) {
	completer := &fakeCompleter{answer: "supplier"}
	cache := &memCache{data: map[string]string{}}
	r := NewRemote(completer, WithCache(cache, time.Minute))

	for i := 0; i < 3; i++ {
		got, err := r.Classify(context.Background(), "Torn fabric")
		if err != nil {
			t.Fatalf("Classify error: %v", err)
		}
		if got != domain.CategorySupplierIssue {
			t.Fatalf("got %q", got)
		}
	}
	if completer.calls != 1 {
		t.Fatalf("expected 1 remote call, got %d", completer.calls)
	}
}

func TestSafeDegradesToUnknown(t *testing.T) {
	failing := NewRemote(&fakeCompleter{err: errors.New("connection refused")})
	safe := Safe(failing, nil)

	got, warn := safe.Classify(context.Background(), "anything")
	if got != domain.CategoryUnknown {
		t.Fatalf("got %q, want unknown", got)
	}
	if !errors.Is(warn, domain.ErrClassification) {
		t.Fatalf("warning %v does not wrap ErrClassification", warn)
	}
}

func TestSafeDegradesEmptyResponse(t *testing.T) {
	safe := Safe(NewRemote(&fakeCompleter{answer: "  "}), nil)
	if got, warn := safe.Classify(context.Background(), "x"); got != domain.CategoryUnknown || warn == nil {
		t.Fatalf("got (%q, %v), want unknown with warning", got, warn)
	}
}

func TestSafeRecoversPanics(t *testing.T) {
	safe := Safe(Func(func(context.Context, string) (domain.Category, error) {
		panic("boom")
	}), nil)
	got, warn := safe.Classify(context.Background(), "x")
	if got != domain.CategoryUnknown || !errors.Is(warn, domain.ErrClassification) {
		t.Fatalf("got (%q, %v)", got, warn)
	}
}

func TestNewFactory(t *testing.T) {
	c, err := New(config.ClassifierConfig{Mode: config.ClassifierModeRule}, nil, nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if got, _ := c.Classify(context.Background(), "wrong size"); got != domain.CategorySupplierIssue {
		t.Fatalf("got %q", got)
	}
	if _, err := New(config.ClassifierConfig{Mode: config.ClassifierModeRemote}, nil, nil); err == nil {
		t.Fatal("expected error for remote mode without API key")
	}
}
