// Package ruleengine classifies activities against a sorted set of
// pattern-based rules, grounded on original_source's RuleEngine
// (domain/rules.rs).
package ruleengine

import (
	"context"
	"regexp"
	"sort"

	"github.com/kodeflow/tempod/internal/domain"
	"github.com/kodeflow/tempod/internal/ports"
)

// compiledRule pairs a persisted Rule with its compiled patterns.
type compiledRule struct {
	rule  *domain.Rule
	app   *regexp.Regexp
	title *regexp.Regexp
}

// RuleMatch is returned by Classify: the rule that matched and which fields
// participated in the match.
type RuleMatch struct {
	Rule          *domain.Rule
	MatchedApp    bool
	MatchedTitle  bool
}

// Dropped records a rule that failed to compile, reported (not fatal).
type Dropped struct {
	RuleID int64
	Reason string
}

// Engine holds the sorted, compiled rule set.
type Engine struct {
	store   ports.RuleRepository
	rules   []compiledRule
	dropped []Dropped
}

// New constructs an Engine over the given rule repository. Call Load before
// first use.
func New(store ports.RuleRepository) *Engine {
	return &Engine{store: store}
}

// Load reads every rule from Store, compiles its patterns, drops and
// reports any with malformed regex, and sorts the remainder by descending
// priority with ties broken by descending id (newer rule wins).
func (e *Engine) Load(ctx context.Context) error {
	rules, err := e.store.List(ctx)
	if err != nil {
		return err
	}

	compiled := make([]compiledRule, 0, len(rules))
	dropped := make([]Dropped, 0)

	for _, r := range rules {
		cr := compiledRule{rule: r}
		var app, title *regexp.Regexp
		ok := true

		if r.AppPattern != "" {
			app, err = regexp.Compile(r.AppPattern)
			if err != nil {
				dropped = append(dropped, Dropped{RuleID: r.ID, Reason: "invalid app_pattern: " + err.Error()})
				ok = false
			}
		}
		if ok && r.TitlePattern != "" {
			title, err = regexp.Compile(r.TitlePattern)
			if err != nil {
				dropped = append(dropped, Dropped{RuleID: r.ID, Reason: "invalid title_pattern: " + err.Error()})
				ok = false
			}
		}
		if !ok {
			continue
		}

		cr.app = app
		cr.title = title
		compiled = append(compiled, cr)
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		if compiled[i].rule.Priority != compiled[j].rule.Priority {
			return compiled[i].rule.Priority > compiled[j].rule.Priority
		}
		return compiled[i].rule.ID > compiled[j].rule.ID
	})

	e.rules = compiled
	e.dropped = dropped
	return nil
}

// Dropped returns the rules discarded by the most recent Load, for
// diagnostics/logging.
func (e *Engine) Dropped() []Dropped {
	return e.dropped
}

// Classify evaluates the activity against the sorted rule set and returns
// the first match, if any. A match requires every pattern the rule declares
// to match its corresponding field.
func (e *Engine) Classify(activity *domain.Activity) (*RuleMatch, bool) {
	for _, cr := range e.rules {
		matchedApp := cr.app == nil || cr.app.MatchString(activity.AppName)
		matchedTitle := cr.title == nil || cr.title.MatchString(activity.WindowTitle)
		if matchedApp && matchedTitle {
			return &RuleMatch{
				Rule:         cr.rule,
				MatchedApp:   cr.app != nil && matchedApp,
				MatchedTitle: cr.title != nil && matchedTitle,
			}, true
		}
	}
	return nil, false
}

// Apply classifies activity and, on a match, mutates Category and
// IsProductive in place.
func (e *Engine) Apply(activity *domain.Activity) {
	match, ok := e.Classify(activity)
	if !ok {
		return
	}
	activity.Category = match.Rule.Category
	activity.IsProductive = match.Rule.IsProductive
}
