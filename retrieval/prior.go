// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package retrieval

import (
	"fmt"
	"strings"
)

// RuleKind selects how a prior rule matches a candidate page.
type RuleKind string

const (
	// RuleTokenInURL adds Weight once per query token found in the URL.
	RuleTokenInURL RuleKind = "token_in_url"

	// RuleTokenInTitle adds Weight once per query token found in the title.
	RuleTokenInTitle RuleKind = "token_in_title"

	// RuleStem adds Weight once when Stem occurs in the URL or the title.
	RuleStem RuleKind = "stem"

	// RuleURLMatch adds Weight once when the URL contains any of
	// Contains or ends with any of Suffixes.
	RuleURLMatch RuleKind = "url_match"

	// RuleVertical adds HintWeight when the URL contains any of
	// Contains and the query carries the vertical hint, Weight when it
	// contains one but the query does not.
	RuleVertical RuleKind = "vertical"
)

// Rule is one entry of the prior table. Rules are evaluated in order
// and their contributions summed before clamping.
type Rule struct {
	Kind       RuleKind `yaml:"kind"`
	Contains   []string `yaml:"contains,omitempty"`
	Suffixes   []string `yaml:"suffixes,omitempty"`
	Stem       string   `yaml:"stem,omitempty"`
	Weight     float64  `yaml:"weight"`
	HintWeight float64  `yaml:"hint_weight,omitempty"`
}

func (r Rule) validate() error {
	switch r.Kind {
	case RuleTokenInURL, RuleTokenInTitle:
	case RuleStem:
		if r.Stem == "" {
			return fmt.Errorf("%w: stem rule without a stem", ErrInvalidRule)
		}
	case RuleURLMatch:
		if len(r.Contains) == 0 && len(r.Suffixes) == 0 {
			return fmt.Errorf("%w: url_match rule without patterns", ErrInvalidRule)
		}
	case RuleVertical:
		if len(r.Contains) == 0 {
			return fmt.Errorf("%w: vertical rule without patterns", ErrInvalidRule)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRule, r.Kind)
	}
	return nil
}

// RuleSet bundles an ordered rule table with its clamp bounds.
type RuleSet struct {
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Rules []Rule  `yaml:"rules"`
}

// DefaultRuleSet returns the rule table tuned for the sporitelna site,
// clamped to [-0.6, 0.9]. Account-related hub pages under /ludia/ are
// boosted, PDF assets and archival material are demoted, and the
// business vertical is boosted or demoted depending on the query.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Min: -0.6,
		Max: 0.9,
		Rules: []Rule{
			{Kind: RuleTokenInURL, Weight: 0.20},
			{Kind: RuleTokenInTitle, Weight: 0.15},
			{Kind: RuleStem, Stem: "uct", Weight: 0.35},
			{Kind: RuleURLMatch, Contains: []string{"/ludia/vsetky-ucty", "/ludia/ucty"}, Weight: 0.40},
			{Kind: RuleURLMatch, Contains: []string{"/ludia/"}, Weight: 0.15},
			{Kind: RuleURLMatch, Contains: []string{"/content/dam/"}, Suffixes: []string{".pdf"}, Weight: -0.40},
			{Kind: RuleURLMatch, Contains: []string{"/zmluvne-podmienky", "/archiv", "/landing-pages/"}, Weight: -0.25},
			{Kind: RuleVertical, Contains: []string{"/biznis/"}, Weight: -0.20, HintWeight: 0.05},
		},
	}
}

func (rs RuleSet) validate() error {
	if rs.Min > rs.Max {
		return fmt.Errorf("%w: min %.2f above max %.2f", ErrInvalidRule, rs.Min, rs.Max)
	}
	for i, r := range rs.Rules {
		if err := r.validate(); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}

// PriorEvaluator computes the structural prior of a page for a query.
type PriorEvaluator struct {
	set RuleSet
}

// NewPriorEvaluator validates the rule set and builds an evaluator.
func NewPriorEvaluator(set RuleSet) (*PriorEvaluator, error) {
	if err := set.validate(); err != nil {
		return nil, err
	}
	return &PriorEvaluator{set: set}, nil
}

// Evaluate sums the rule contributions for the page at url with the
// given title and clamps the total to the rule set bounds. URL and
// title are folded with the same normalization as query tokens, so
// accented page titles still match.
func (e *PriorEvaluator) Evaluate(queryTokens []string, url, title string, businessQuery bool) float64 {
	u := Normalize(url)
	t := Normalize(title)

	var prior float64
	for _, r := range e.set.Rules {
		switch r.Kind {
		case RuleTokenInURL:
			for _, q := range queryTokens {
				if strings.Contains(u, q) {
					prior += r.Weight
				}
			}
		case RuleTokenInTitle:
			for _, q := range queryTokens {
				if strings.Contains(t, q) {
					prior += r.Weight
				}
			}
		case RuleStem:
			if strings.Contains(u, r.Stem) || strings.Contains(t, r.Stem) {
				prior += r.Weight
			}
		case RuleURLMatch:
			if matchesURL(u, r.Contains, r.Suffixes) {
				prior += r.Weight
			}
		case RuleVertical:
			if matchesURL(u, r.Contains, nil) {
				if businessQuery {
					prior += r.HintWeight
				} else {
					prior += r.Weight
				}
			}
		}
	}

	if prior < e.set.Min {
		return e.set.Min
	}
	if prior > e.set.Max {
		return e.set.Max
	}
	return prior
}

func matchesURL(url string, contains, suffixes []string) bool {
	for _, p := range contains {
		if strings.Contains(url, p) {
			return true
		}
	}
	for _, s := range suffixes {
		if strings.HasSuffix(url, s) {
			return true
		}
	}
	return false
}
