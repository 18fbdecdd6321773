package agent

import (
	"encoding/json"

	"github.com/pathways-2/Agent-Chatbot/internal/guardrails"
	"github.com/pathways-2/Agent-Chatbot/internal/tools"
)

// Source is a citation attached to a chat reply.
type Source struct {
	Type            string `json:"type"`
	Title           string `json:"title,omitempty"`
	Section         string `json:"section,omitempty"`
	LastUpdated     string `json:"last_updated,omitempty"`
	ID              string `json:"id,omitempty"`
	Count           int    `json:"count,omitempty"`
	SearchType      string `json:"search_type,omitempty"`
	CalculationType string `json:"calculation_type,omitempty"`
	Expression      string `json:"expression,omitempty"`
}

// postProcess applies the output filter, appends disclaimers, extracts
// sources, and classifies the response. The output filter runs on every
// answer, tool-assisted or not.
func (r *Runner) postProcess(answer string, results []tools.Result, verdict *guardrails.Verdict) *Result {
	filtered := r.guardrails.FilterOutput(answer)

	if needsDisclaimer(results) {
		filtered = r.guardrails.Disclaim(filtered, guardrails.DisclaimerGeneral)
	} else if verdict.RequiresDisclaimer {
		filtered = r.guardrails.Disclaim(filtered, verdict.DisclaimerKind)
	}

	return &Result{
		Response:  filtered,
		Type:      responseType(results),
		Sources:   extractSources(results),
		ToolsUsed: toolsUsed(results),
	}
}

// needsDisclaimer reports whether any dispatched tool exposed policy or
// employee data.
func needsDisclaimer(results []tools.Result) bool {
	for _, res := range results {
		if res.ToolName == "policy_search" || res.ToolName == "employee_lookup" {
			return true
		}
	}
	return false
}

// responseType classifies the reply by the tools that produced it. Policy
// results outrank employee results outrank calculations; a reply with no
// tool involvement is general.
func responseType(results []tools.Result) string {
	if len(results) == 0 {
		return TypeGeneral
	}

	names := make(map[string]bool, len(results))
	for _, res := range results {
		names[res.ToolName] = true
	}

	switch {
	case names["policy_search"]:
		return TypePolicy
	case names["employee_lookup"]:
		return TypeEmployee
	case names["calculator"]:
		return TypeCalculation
	default:
		return TypeTool
	}
}

// toolsUsed returns the distinct tool names in dispatch order.
func toolsUsed(results []tools.Result) []string {
	seen := make(map[string]bool, len(results))
	names := make([]string, 0, len(results))
	for _, res := range results {
		if !seen[res.ToolName] {
			seen[res.ToolName] = true
			names = append(names, res.ToolName)
		}
	}
	return names
}

// Payload shapes for source extraction. Only the cited fields are decoded.
type policyPayload struct {
	Success bool `json:"success"`
	Results []struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Section     string `json:"section"`
		LastUpdated string `json:"last_updated"`
	} `json:"results"`
}

type employeePayload struct {
	Success    bool   `json:"success"`
	Count      int    `json:"count"`
	SearchType string `json:"search_type"`
}

type calcPayload struct {
	Success    bool   `json:"success"`
	Type       string `json:"type"`
	Expression string `json:"expression"`
}

// extractSources builds the citation list from successful tool results.
// Failed results contribute nothing.
func extractSources(results []tools.Result) []Source {
	sources := []Source{}
	for _, res := range results {
		if !res.Success {
			continue
		}
		switch res.ToolName {
		case "policy_search":
			var p policyPayload
			if json.Unmarshal([]byte(res.Content), &p) != nil || !p.Success {
				continue
			}
			for _, pol := range p.Results {
				sources = append(sources, Source{
					Type:        "policy",
					Title:       pol.Title,
					Section:     pol.Section,
					LastUpdated: pol.LastUpdated,
					ID:          pol.ID,
				})
			}
		case "employee_lookup":
			var e employeePayload
			if json.Unmarshal([]byte(res.Content), &e) != nil || !e.Success {
				continue
			}
			sources = append(sources, Source{
				Type:       "employee_data",
				Count:      e.Count,
				SearchType: e.SearchType,
			})
		case "calculator":
			var c calcPayload
			if json.Unmarshal([]byte(res.Content), &c) != nil || !c.Success {
				continue
			}
			sources = append(sources, Source{
				Type:            "calculation",
				CalculationType: c.Type,
				Expression:      c.Expression,
			})
		}
	}
	return sources
}
