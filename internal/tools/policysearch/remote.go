package policysearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// TimeoutVectorSearch caps one request to the vector-search backend. The
// local corpus fallback makes a slow backend worse than no backend.
const TimeoutVectorSearch = 10 * time.Second

// VectorClient queries a vectorize-style search backend over HTTP.
type VectorClient struct {
	endpoint string
	apiKey   string
	index    string
	client   *http.Client
}

// NewVectorClient creates a client for the backend at endpoint. The API key
// is sent as a bearer token.
func NewVectorClient(endpoint, apiKey, index string) *VectorClient {
	return &VectorClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		index:    index,
		client:   &http.Client{Timeout: TimeoutVectorSearch},
	}
}

type vectorSearchRequest struct {
	Query           string            `json:"query"`
	Index           string            `json:"index"`
	Limit           int               `json:"limit"`
	IncludeMetadata bool              `json:"include_metadata"`
	Filter          map[string]string `json:"filter,omitempty"`
}

type vectorSearchResponse struct {
	Results []struct {
		ID       string  `json:"id"`
		Score    float64 `json:"score"`
		Metadata struct {
			Title         string `json:"title"`
			Section       string `json:"section"`
			Content       string `json:"content"`
			LastUpdated   string `json:"last_updated"`
			EffectiveDate string `json:"effective_date"`
		} `json:"metadata"`
	} `json:"results"`
}

// Search queries the backend and maps hits into scored policies.
func (v *VectorClient) Search(ctx context.Context, query, section string, limit int) ([]ScoredPolicy, error) {
	payload := vectorSearchRequest{
		Query:           query,
		Index:           v.index,
		Limit:           limit,
		IncludeMetadata: true,
	}
	if section != "" {
		payload.Filter = map[string]string{"section": section}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding vector search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building vector search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+v.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vector search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vector search returned status %d", resp.StatusCode)
	}

	var parsed vectorSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding vector search response: %w", err)
	}

	out := make([]ScoredPolicy, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		out = append(out, ScoredPolicy{
			Policy: Policy{
				ID:            r.ID,
				Title:         r.Metadata.Title,
				Section:       r.Metadata.Section,
				Content:       r.Metadata.Content,
				LastUpdated:   r.Metadata.LastUpdated,
				EffectiveDate: r.Metadata.EffectiveDate,
			},
			RelevanceScore: r.Score,
		})
	}
	return out, nil
}
