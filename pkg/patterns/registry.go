// Package patterns provides a centralized pattern registry for content
// authenticity heuristics. All regex patterns are compiled once at first
// use and shared across analyzers and the behavioral scorer.
//
// Design principles:
// - COMPILE ONCE: patterns compiled at init, not per-request
// - DRY: single source of truth for phrase and signature lists
// - CATEGORIZED: patterns organized by detection concern
package patterns

import (
	"regexp"
	"sync"
)

// Category groups patterns by detection concern.
type Category string

const (
	// Text authenticity
	CategoryAIPhrase    Category = "ai_phrase"      // stock AI-writing phrases
	CategoryAttribution Category = "ai_attribution" // explicit AI self-attribution
	CategoryFirstPerson Category = "first_person"   // personal-voice markers
	CategoryScam        Category = "scam"           // phishing/scam indicators

	// Image provenance
	CategoryGenerator Category = "generator_software" // generative-tool signatures in metadata
)

// Pattern holds a compiled regex with metadata.
type Pattern struct {
	Name        string
	Regex       *regexp.Regexp
	Category    Category
	Score       float64 // additive score contribution when matched
	Description string
}

// Registry holds all compiled patterns, organized by category.
type Registry struct {
	mu         sync.RWMutex
	byCategory map[Category][]*Pattern
	all        []*Pattern
}

var (
	globalRegistry *Registry
	initOnce       sync.Once
)

// Get returns the global pattern registry (singleton).
// Thread-safe and guaranteed to be initialized.
func Get() *Registry {
	initOnce.Do(func() {
		globalRegistry = newRegistry()
	})
	return globalRegistry
}

func newRegistry() *Registry {
	r := &Registry{
		byCategory: make(map[Category][]*Pattern),
		all:        make([]*Pattern, 0, 64),
	}
	r.registerAIPhrasePatterns()
	r.registerAttributionPatterns()
	r.registerFirstPersonPatterns()
	r.registerScamPatterns()
	r.registerGeneratorPatterns()
	return r
}

func (r *Registry) register(name, pattern string, category Category, score float64, description string) {
	p := &Pattern{
		Name:        name,
		Regex:       regexp.MustCompile(pattern),
		Category:    category,
		Score:       score,
		Description: description,
	}
	r.byCategory[category] = append(r.byCategory[category], p)
	r.all = append(r.all, p)
}

// GetByCategory returns all patterns for a category.
// Returns an empty slice if the category is unknown (never nil).
func (r *Registry) GetByCategory(cat Category) []*Pattern {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if patterns, ok := r.byCategory[cat]; ok {
		return patterns
	}
	return []*Pattern{}
}

// MatchAny returns the first pattern in the given categories that matches,
// or nil. Optimized for early exit.
func (r *Registry) MatchAny(text string, cats ...Category) *Pattern {
	for _, cat := range cats {
		for _, p := range r.GetByCategory(cat) {
			if p.Regex.MatchString(text) {
				return p
			}
		}
	}
	return nil
}

// MatchAll returns every pattern in the given categories that matches.
// Use when all matches are needed for comprehensive scoring.
func (r *Registry) MatchAll(text string, cats ...Category) []*Pattern {
	var matches []*Pattern
	for _, cat := range cats {
		for _, p := range r.GetByCategory(cat) {
			if p.Regex.MatchString(text) {
				matches = append(matches, p)
			}
		}
	}
	return matches
}

// CountMatches returns how many patterns in the category match the text.
// Each pattern counts at most once regardless of occurrence count.
func (r *Registry) CountMatches(text string, cat Category) int {
	total := 0
	for _, p := range r.GetByCategory(cat) {
		if p.Regex.MatchString(text) {
			total++
		}
	}
	return total
}

// TotalPatterns returns the total count of registered patterns.
func (r *Registry) TotalPatterns() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.all)
}
