// Package policysearch implements the policy_search tool. Queries go to the
// configured vector-search backend when one is available and fall back to a
// keyword-scored search over the embedded policy corpus.
package policysearch

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pathways-2/Agent-Chatbot/patterns"
)

// Policy is one HR policy document.
type Policy struct {
	ID            string   `json:"id" yaml:"id"`
	Title         string   `json:"title" yaml:"title"`
	Section       string   `json:"section" yaml:"section"`
	Content       string   `json:"content" yaml:"content"`
	Keywords      []string `json:"keywords,omitempty" yaml:"keywords"`
	LastUpdated   string   `json:"last_updated" yaml:"last_updated"`
	EffectiveDate string   `json:"effective_date" yaml:"effective_date"`
}

// ScoredPolicy is a policy with its search relevance.
type ScoredPolicy struct {
	Policy
	RelevanceScore float64 `json:"relevance_score"`
}

// Corpus is the embedded policy collection used for local search.
type Corpus struct {
	policies []Policy
}

type corpusFile struct {
	Policies []Policy `yaml:"policies"`
}

// NewCorpus loads the embedded policy corpus.
func NewCorpus() (*Corpus, error) {
	var cf corpusFile
	if err := yaml.Unmarshal(patterns.HRPoliciesYAML(), &cf); err != nil {
		return nil, fmt.Errorf("parsing embedded policy corpus: %w", err)
	}
	return &Corpus{policies: cf.Policies}, nil
}

// Relevance weights for local scoring. Keyword hits dominate, then exact
// title substrings, then section and content substrings.
const (
	scoreKeyword = 10
	scoreTitle   = 15
	scoreContent = 5
	scoreSection = 8
)

// Search scores every policy against the query and returns the top limit
// matches, highest score first. An optional section filter restricts
// candidates before scoring.
func (c *Corpus) Search(query, section string, limit int) []ScoredPolicy {
	queryLower := strings.ToLower(query)
	var results []ScoredPolicy

	for _, p := range c.policies {
		if section != "" && !strings.Contains(strings.ToLower(p.Section), strings.ToLower(section)) {
			continue
		}

		score := 0.0
		for _, kw := range p.Keywords {
			if strings.Contains(queryLower, strings.ToLower(kw)) {
				score += scoreKeyword
			}
		}
		if strings.Contains(strings.ToLower(p.Title), queryLower) {
			score += scoreTitle
		}
		if strings.Contains(strings.ToLower(p.Content), queryLower) {
			score += scoreContent
		}
		if strings.Contains(strings.ToLower(p.Section), queryLower) {
			score += scoreSection
		}

		if score > 0 {
			results = append(results, ScoredPolicy{Policy: p, RelevanceScore: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Sections returns the distinct policy sections in corpus order.
func (c *Corpus) Sections() []string {
	seen := make(map[string]bool)
	var sections []string
	for _, p := range c.policies {
		if !seen[p.Section] {
			seen[p.Section] = true
			sections = append(sections, p.Section)
		}
	}
	return sections
}

// BySection returns every policy in a matching section.
func (c *Corpus) BySection(section string) []Policy {
	var out []Policy
	for _, p := range c.policies {
		if strings.Contains(strings.ToLower(p.Section), strings.ToLower(section)) {
			out = append(out, p)
		}
	}
	return out
}

// ByID returns the policy with the given ID, or nil.
func (c *Corpus) ByID(id string) *Policy {
	for i := range c.policies {
		if c.policies[i].ID == id {
			return &c.policies[i]
		}
	}
	return nil
}

// Len returns the number of policies in the corpus.
func (c *Corpus) Len() int { return len(c.policies) }
