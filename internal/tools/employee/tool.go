package employee

import (
	"context"
	"encoding/json"
	"fmt"
)

// MaxResults caps the number of records one lookup returns.
const MaxResults = 10

// LookupTool exposes the directory to the model as employee_lookup.
type LookupTool struct {
	dir *Directory
}

// NewLookupTool creates the employee_lookup tool over a directory.
func NewLookupTool(dir *Directory) *LookupTool {
	return &LookupTool{dir: dir}
}

// Name implements tools.Tool.
func (t *LookupTool) Name() string { return "employee_lookup" }

// Description implements tools.Tool.
func (t *LookupTool) Description() string {
	return "Searches for employee information by name, ID, email, department, or job title"
}

// Parameters implements tools.Tool.
func (t *LookupTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "The search query (name, ID, email, department, or job title)",
			},
			"type": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"auto", "name", "id", "email", "department", "job_title"},
				"description": `The type of search to perform. Use "auto" for smart detection.`,
			},
		},
		"required": []string{"query"},
	}
}

type lookupArgs struct {
	Query string `json:"query"`
	Type  string `json:"type"`
}

type lookupResult struct {
	Success    bool                `json:"success"`
	Results    []map[string]string `json:"results"`
	Count      int                 `json:"count"`
	SearchType string              `json:"search_type"`
	Query      string              `json:"query"`
	Limited    bool                `json:"limited"`
}

// Execute implements tools.Tool. Result sets are capped at MaxResults with
// the Limited flag set when records were cut.
func (t *LookupTool) Execute(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var in lookupArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("parsing employee_lookup arguments: %w", err)
	}
	if in.Query == "" {
		return nil, fmt.Errorf("query parameter is required")
	}
	if in.Type == "" {
		in.Type = "auto"
	}

	var (
		records    []Record
		searchType = in.Type
	)
	switch in.Type {
	case "name":
		records = t.dir.SearchByName(in.Query)
	case "id":
		if emp := t.dir.SearchByID(in.Query); emp != nil {
			records = []Record{emp}
		}
	case "email":
		if emp := t.dir.SearchByEmail(in.Query); emp != nil {
			records = []Record{emp}
		}
	case "department":
		records = t.dir.SearchByDepartment(in.Query)
	case "job_title":
		records = t.dir.SearchByJobTitle(in.Query)
	default:
		records, searchType = t.dir.SmartSearch(in.Query)
	}

	formatted := make([]map[string]string, len(records))
	for i, emp := range records {
		formatted[i] = Display(emp)
	}

	limited := len(formatted) > MaxResults
	shown := formatted
	if limited {
		shown = formatted[:MaxResults]
	}

	out := lookupResult{
		Success:    true,
		Results:    shown,
		Count:      len(formatted),
		SearchType: searchType,
		Query:      in.Query,
		Limited:    limited,
	}
	return json.Marshal(out)
}
