package patterns

import (
	"testing"
)

func TestRegistryInit(t *testing.T) {
	// Get should return a singleton registry
	r1 := Get()
	r2 := Get()

	if r1 != r2 {
		t.Error("Get() should return the same registry instance")
	}
}

func TestRegistryHasPatterns(t *testing.T) {
	r := Get()

	total := r.TotalPatterns()
	if total < 40 {
		t.Errorf("expected at least 40 patterns, got %d", total)
	}

	t.Logf("Registry loaded %d patterns", total)
}

func TestCategoryPatterns(t *testing.T) {
	r := Get()

	testCases := []struct {
		category    Category
		minPatterns int
	}{
		{CategoryAIPhrase, 15},
		{CategoryAttribution, 4},
		{CategoryFirstPerson, 1},
		{CategoryScam, 8},
		{CategoryGenerator, 5},
	}

	for _, tc := range testCases {
		t.Run(string(tc.category), func(t *testing.T) {
			patterns := r.GetByCategory(tc.category)
			if len(patterns) < tc.minPatterns {
				t.Errorf("category %s: expected at least %d patterns, got %d",
					tc.category, tc.minPatterns, len(patterns))
			}
			t.Logf("Category %s: %d patterns", tc.category, len(patterns))
		})
	}
}

func TestMatchAny(t *testing.T) {
	r := Get()

	testCases := []struct {
		name       string
		text       string
		categories []Category
		wantMatch  bool
	}{
		{
			name:       "stock AI phrase",
			text:       "It is important to note that the landscape has shifted.",
			categories: []Category{CategoryAIPhrase},
			wantMatch:  true,
		},
		{
			name:       "explicit attribution",
			text:       "As an AI language model, I cannot do that.",
			categories: []Category{CategoryAttribution},
			wantMatch:  true,
		},
		{
			name:       "model name drop",
			text:       "This summary was produced with ChatGPT last week.",
			categories: []Category{CategoryAttribution},
			wantMatch:  true,
		},
		{
			name:       "first person voice",
			text:       "I went to the market and my dog followed me.",
			categories: []Category{CategoryFirstPerson},
			wantMatch:  true,
		},
		{
			name:       "scam urgency",
			text:       "Act now! You have won a prize, verify your account today.",
			categories: []Category{CategoryScam},
			wantMatch:  true,
		},
		{
			name:       "generator signature",
			text:       "made with stable diffusion v1.5",
			categories: []Category{CategoryGenerator},
			wantMatch:  true,
		},
		{
			name:       "dall-e spelling variants",
			text:       "rendered by DALL-E",
			categories: []Category{CategoryGenerator},
			wantMatch:  true,
		},
		{
			name:       "plain prose no match",
			text:       "We walked to the river and skipped stones until dusk.",
			categories: []Category{CategoryAttribution, CategoryGenerator, CategoryScam},
			wantMatch:  false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			match := r.MatchAny(tc.text, tc.categories...)
			if tc.wantMatch && match == nil {
				t.Errorf("expected a match for %q", tc.text)
			}
			if !tc.wantMatch && match != nil {
				t.Errorf("unexpected match %s for %q", match.Name, tc.text)
			}
		})
	}
}

func TestCountMatches(t *testing.T) {
	r := Get()

	text := "It is important to note that we must delve into this comprehensive topic. Furthermore, the landscape of testing is multifaceted."
	count := r.CountMatches(text, CategoryAIPhrase)
	if count < 4 {
		t.Errorf("expected at least 4 phrase matches, got %d", count)
	}

	// Each pattern counts once no matter how often it fires.
	repeated := "Furthermore, we agree. Furthermore, we proceed. Furthermore, we conclude."
	if got := r.CountMatches(repeated, CategoryAIPhrase); got != 1 {
		t.Errorf("repeated phrase should count once, got %d", got)
	}
}

func TestMatchAllReturnsEveryHit(t *testing.T) {
	r := Get()

	text := "Generated by AI. As an AI assistant I used ChatGPT."
	hits := r.MatchAll(text, CategoryAttribution)
	if len(hits) < 2 {
		t.Fatalf("expected at least 2 attribution hits, got %d", len(hits))
	}
	seen := map[string]bool{}
	for _, p := range hits {
		if seen[p.Name] {
			t.Errorf("pattern %s returned twice", p.Name)
		}
		seen[p.Name] = true
	}
}
