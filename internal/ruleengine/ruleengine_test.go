package ruleengine

import (
	"context"
	"testing"
	"time"

	"github.com/kodeflow/tempod/internal/adapters/store"
	"github.com/kodeflow/tempod/internal/domain"
	"github.com/kodeflow/tempod/internal/ports"
)

func newTestStore(t *testing.T) ports.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("NewMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEngine_Load_SortsByPriorityThenIDDescending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	low := &domain.Rule{Name: "low", AppPattern: "a", Category: "misc", Priority: 1}
	highOlder := &domain.Rule{Name: "high-older", AppPattern: "b", Category: "misc", Priority: 5}
	highNewer := &domain.Rule{Name: "high-newer", AppPattern: "c", Category: "misc", Priority: 5}
	for _, r := range []*domain.Rule{low, highOlder, highNewer} {
		if err := s.Rules().Save(ctx, r); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	e := New(s.Rules())
	if err := e.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(e.rules) != 3 {
		t.Fatalf("Load() produced %d rules, want 3", len(e.rules))
	}
	if e.rules[0].rule.ID != highNewer.ID || e.rules[1].rule.ID != highOlder.ID || e.rules[2].rule.ID != low.ID {
		t.Errorf("order = %+v, want newer-at-equal-priority first", e.rules)
	}
}

func TestEngine_Load_DropsMalformedRegex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	bad := &domain.Rule{Name: "bad", AppPattern: "(unterminated", Category: "x", Priority: 1}
	good := &domain.Rule{Name: "good", AppPattern: "vim", Category: "coding", Priority: 1}
	_ = s.Rules().Save(ctx, bad)
	_ = s.Rules().Save(ctx, good)

	e := New(s.Rules())
	if err := e.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(e.rules) != 1 {
		t.Fatalf("Load() kept %d rules, want 1", len(e.rules))
	}
	if len(e.Dropped()) != 1 || e.Dropped()[0].RuleID != bad.ID {
		t.Errorf("Dropped() = %+v, want bad rule reported", e.Dropped())
	}
}

func TestEngine_Classify_FirstMatchWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.Rules().Save(ctx, &domain.Rule{Name: "generic", AppPattern: ".*", Category: "misc", Priority: 1})
	_ = s.Rules().Save(ctx, &domain.Rule{Name: "vim", AppPattern: "^vim$", Category: "coding", IsProductive: true, Priority: 10})

	e := New(s.Rules())
	if err := e.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	match, ok := e.Classify(&domain.Activity{AppName: "vim", WindowTitle: "main.go"})
	if !ok {
		t.Fatal("Classify() found no match")
	}
	if match.Rule.Category != "coding" {
		t.Errorf("Category = %v, want coding (higher priority rule should win)", match.Rule.Category)
	}
}

func TestEngine_Apply_MutatesActivity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_ = s.Rules().Save(ctx, &domain.Rule{Name: "browser", AppPattern: "firefox", Category: "browsing", IsProductive: false, Priority: 1})

	e := New(s.Rules())
	if err := e.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	a := &domain.Activity{AppName: "firefox", WindowTitle: "news"}
	e.Apply(a)
	if a.Category != "browsing" || a.IsProductive {
		t.Errorf("Apply() = {%v, %v}, want {browsing, false}", a.Category, a.IsProductive)
	}
}

func TestEngine_Classify_NoMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_ = s.Rules().Save(ctx, &domain.Rule{Name: "vim", AppPattern: "^vim$", Category: "coding", Priority: 1})

	e := New(s.Rules())
	if err := e.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	_, ok := e.Classify(&domain.Activity{AppName: "spotify", WindowTitle: "music"})
	if ok {
		t.Error("Classify() unexpectedly matched")
	}
}

func TestSuggestRules_ThresholdAndMajorityVote(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		_ = s.Activities().Save(ctx, &domain.Activity{
			AppName:      "slack",
			WindowTitle:  "general",
			StartTime:    start.Add(time.Duration(i) * time.Hour),
			Duration:     time.Minute,
			Category:     "communication",
			IsProductive: i < 8, // majority productive
		})
	}
	for i := 0; i < 3; i++ {
		_ = s.Activities().Save(ctx, &domain.Activity{
			AppName:     "rare-app",
			WindowTitle: "x",
			StartTime:   start.Add(time.Duration(i) * time.Hour),
			Duration:    time.Minute,
		})
	}

	suggestions, err := SuggestRules(ctx, s.Activities(), ports.TimeRange{
		Start: start.Add(-time.Hour),
		End:   start.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("SuggestRules() error = %v", err)
	}

	if len(suggestions) != 1 {
		t.Fatalf("SuggestRules() returned %d suggestions, want 1 (rare-app below threshold)", len(suggestions))
	}
	if suggestions[0].AppName != "slack" {
		t.Errorf("AppName = %v, want slack", suggestions[0].AppName)
	}
	if !suggestions[0].IsProductive {
		t.Error("IsProductive = false, want true (majority vote)")
	}
	if suggestions[0].AppPattern != "slack" {
		t.Errorf("AppPattern = %v, want slack (QuoteMeta of a plain name)", suggestions[0].AppPattern)
	}
}
