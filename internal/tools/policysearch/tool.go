package policysearch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultLimit is the result cap when the model does not ask for one.
const DefaultLimit = 5

// Tool exposes policy search to the model as policy_search.
type Tool struct {
	corpus *Corpus
	vector *VectorClient
}

// Option configures a Tool.
type Option func(*Tool)

// WithVectorClient enables the remote vector-search backend. The embedded
// corpus remains the fallback when the backend errors.
func WithVectorClient(v *VectorClient) Option {
	return func(t *Tool) { t.vector = v }
}

// NewTool creates the policy_search tool over the given corpus.
func NewTool(corpus *Corpus, opts ...Option) *Tool {
	t := &Tool{corpus: corpus}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name implements tools.Tool.
func (t *Tool) Name() string { return "policy_search" }

// Description implements tools.Tool.
func (t *Tool) Description() string {
	return "Searches HR policies and procedures using vector search for relevant information"
}

// Parameters implements tools.Tool.
func (t *Tool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Search query for finding relevant HR policies",
			},
			"section": map[string]interface{}{
				"type":        "string",
				"description": `Optional: Filter results by policy section (e.g., "Benefits", "Work Arrangements")`,
			},
			"limit": map[string]interface{}{
				"type":        "number",
				"description": "Maximum number of results to return (default: 5)",
				"minimum":     1,
				"maximum":     10,
			},
		},
		"required": []string{"query"},
	}
}

type searchArgs struct {
	Query   string `json:"query"`
	Section string `json:"section"`
	Limit   int    `json:"limit"`
}

type searchResult struct {
	Success   bool           `json:"success"`
	Results   []ScoredPolicy `json:"results"`
	Query     string         `json:"query"`
	Section   string         `json:"section,omitempty"`
	Count     int            `json:"count"`
	Source    string         `json:"source"`
	Timestamp string         `json:"timestamp"`
}

// Execute implements tools.Tool. The remote backend is preferred; on any
// backend error the embedded corpus answers instead, with the source field
// reporting which path produced the results.
func (t *Tool) Execute(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var in searchArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("parsing policy_search arguments: %w", err)
	}
	if in.Query == "" {
		return nil, fmt.Errorf("query parameter is required")
	}
	if in.Limit <= 0 {
		in.Limit = DefaultLimit
	}

	var (
		results []ScoredPolicy
		source  = "local"
	)
	if t.vector != nil {
		remote, err := t.vector.Search(ctx, in.Query, in.Section, in.Limit)
		if err != nil {
			log.Warn().Err(err).Msg("vector_search_failed_falling_back")
		} else {
			results = remote
			source = "vectorize"
		}
	}
	if source == "local" {
		results = t.corpus.Search(in.Query, in.Section, in.Limit)
	}
	if results == nil {
		results = []ScoredPolicy{}
	}

	return json.Marshal(searchResult{
		Success:   true,
		Results:   results,
		Query:     in.Query,
		Section:   in.Section,
		Count:     len(results),
		Source:    source,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
