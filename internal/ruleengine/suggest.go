package ruleengine

import (
	"context"
	"regexp"
	"sort"

	"github.com/kodeflow/tempod/internal/domain"
	"github.com/kodeflow/tempod/internal/ports"
)

// suggestionThreshold is the minimum number of observed activities for an
// app before SuggestRules proposes a rule for it, grounded on
// original_source's `frequency >= 10`.
const suggestionThreshold = 10

// Suggestion is a candidate rule SuggestRules proposes for review; it is
// never persisted automatically.
type Suggestion struct {
	AppName      string
	AppPattern   string
	Category     string
	IsProductive bool
	Occurrences  int
}

// SuggestRules groups activities in range by app_name and proposes one rule
// per app seen at least suggestionThreshold times, with is_productive set by
// majority vote among the observed activities.
func SuggestRules(ctx context.Context, activities ports.ActivityRepository, r ports.TimeRange) ([]Suggestion, error) {
	rows, err := activities.Query(ctx, r)
	if err != nil {
		return nil, err
	}

	type tally struct {
		count      int
		productive int
		category   map[string]int
	}
	byApp := make(map[string]*tally)

	for _, a := range rows {
		t, ok := byApp[a.AppName]
		if !ok {
			t = &tally{category: make(map[string]int)}
			byApp[a.AppName] = t
		}
		t.count++
		if a.IsProductive {
			t.productive++
		}
		if a.Category != "" {
			t.category[a.Category]++
		}
	}

	var suggestions []Suggestion
	for app, t := range byApp {
		if t.count < suggestionThreshold {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			AppName:      app,
			AppPattern:   regexp.QuoteMeta(app),
			Category:     majorityCategory(t.category),
			IsProductive: t.productive*2 >= t.count,
			Occurrences:  t.count,
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		return suggestions[i].Occurrences > suggestions[j].Occurrences
	})

	return suggestions, nil
}

func majorityCategory(counts map[string]int) string {
	best := ""
	bestCount := 0
	for cat, n := range counts {
		if n > bestCount {
			best = cat
			bestCount = n
		}
	}
	return best
}

// ToRule converts a Suggestion into a domain.Rule ready to be Save'd, with
// the given priority.
func (s Suggestion) ToRule(priority int) *domain.Rule {
	return &domain.Rule{
		Name:         "suggested: " + s.AppName,
		AppPattern:   s.AppPattern,
		Category:     s.Category,
		IsProductive: s.IsProductive,
		Priority:     priority,
	}
}
