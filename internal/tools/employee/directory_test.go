package employee

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathways-2/Agent-Chatbot/internal/guardrails"
)

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	dir, err := NewDirectory()
	require.NoError(t, err)
	require.Equal(t, 15, dir.Len())
	return dir
}

func TestSearchByName(t *testing.T) {
	dir := newTestDirectory(t)

	results := dir.SearchByName("Sarah Johnson")
	require.NotEmpty(t, results)
	assert.Equal(t, "1002", results[0].ID())

	// Partial and case-insensitive matches.
	results = dir.SearchByName("sarah")
	require.Len(t, results, 1)
	assert.Equal(t, "Sarah Johnson", results[0].Name())

	// Last-name match covers multiple employees sharing it.
	results = dir.SearchByName("smith")
	require.Len(t, results, 1)

	assert.Empty(t, dir.SearchByName("Zaphod Beeblebrox"))
}

func TestSearchByID(t *testing.T) {
	dir := newTestDirectory(t)
	emp := dir.SearchByID("1005")
	require.NotNil(t, emp)
	assert.Equal(t, "David Chen", emp.Name())
	assert.Nil(t, dir.SearchByID("9999"))
}

func TestSearchByEmail(t *testing.T) {
	dir := newTestDirectory(t)
	emp := dir.SearchByEmail("EMILY.DAVIS@techcorp.com")
	require.NotNil(t, emp)
	assert.Equal(t, "1004", emp.ID())
}

func TestSearchByDepartment(t *testing.T) {
	dir := newTestDirectory(t)
	results := dir.SearchByDepartment("engineering")
	assert.Len(t, results, 5)
}

func TestSmartSearch(t *testing.T) {
	dir := newTestDirectory(t)

	tests := []struct {
		query    string
		wantType string
		wantLen  int
	}{
		{"1001", "employee_id", 1},
		{"lisa.wong@techcorp.com", "email", 1},
		{"Rachel Kim", "name", 1},
		{"Finance", "department", 2},
		{"DevOps Engineer", "job_title", 1},
		{"nguyen", "name_partial", 1},
		{"qqqq", "unknown", 0},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			results, typ := dir.SmartSearch(tc.query)
			assert.Equal(t, tc.wantType, typ)
			assert.Len(t, results, tc.wantLen)
		})
	}
}

func TestVacationBalance(t *testing.T) {
	dir := newTestDirectory(t)

	bal := dir.VacationBalance("1001")
	require.NotNil(t, bal)
	assert.Equal(t, "John Smith", bal["name"])
	assert.Equal(t, 14.5, bal["vacation_balance"])
	assert.Nil(t, dir.VacationBalance("9999"))
}

func TestVacationAfterLeave(t *testing.T) {
	dir := newTestDirectory(t)

	calc := dir.VacationAfterLeave("1001", 5)
	require.NotNil(t, calc)
	assert.Equal(t, 14.5, calc["current_balance"])
	assert.Equal(t, 9.5, calc["remaining_balance"])
	assert.Equal(t, true, calc["sufficient_balance"])

	calc = dir.VacationAfterLeave("1001", 20)
	assert.Equal(t, false, calc["sufficient_balance"])
}

func TestDepartmentStats(t *testing.T) {
	dir := newTestDirectory(t)
	stats := dir.DepartmentStats()
	require.Contains(t, stats, "Engineering")
	assert.Equal(t, 5, stats["Engineering"]["total_employees"])
}

func TestDisplayOmitsSensitiveFields(t *testing.T) {
	dir := newTestDirectory(t)
	got := Display(dir.SearchByID("1001"))
	require.NotNil(t, got)
	assert.Equal(t, "John Smith", got["name"])
	assert.NotContains(t, got, "salary")
	assert.NotContains(t, got, "ssn")

	// Everything Display emits must survive the guardrail allowlist.
	for k := range got {
		assert.Contains(t, guardrails.SafeEmployeeFields, k)
	}
}

func TestLookupToolExecute(t *testing.T) {
	dir := newTestDirectory(t)
	tool := NewLookupTool(dir)
	ctx := context.Background()

	out, err := tool.Execute(ctx, json.RawMessage(`{"query":"Sarah Johnson"}`))
	require.NoError(t, err)

	var res lookupResult
	require.NoError(t, json.Unmarshal(out, &res))
	assert.True(t, res.Success)
	assert.Equal(t, "name", res.SearchType)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "Sarah Johnson", res.Results[0]["name"])
	assert.False(t, res.Limited)
}

func TestLookupToolExplicitType(t *testing.T) {
	dir := newTestDirectory(t)
	tool := NewLookupTool(dir)

	out, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"1003","type":"id"}`))
	require.NoError(t, err)

	var res lookupResult
	require.NoError(t, json.Unmarshal(out, &res))
	require.Len(t, res.Results, 1)
	assert.Equal(t, "Michael Brown", res.Results[0]["name"])
	assert.Equal(t, "id", res.SearchType)
}

func TestLookupToolRequiresQuery(t *testing.T) {
	tool := NewLookupTool(newTestDirectory(t))
	_, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query parameter is required")
}

func TestLookupToolCapsResults(t *testing.T) {
	// Build a directory with more than MaxResults matching records.
	csv := "employee_id,first_name,last_name,email,department,job_title,supervisor_name,employment_status\n"
	for i := 0; i < 12; i++ {
		csv += string(rune('a'+i)) + "01,Test,Person,t@x.com,Engineering,Engineer,Boss,Active\n"
	}
	dir, err := NewDirectoryFromCSV([]byte(csv))
	require.NoError(t, err)

	tool := NewLookupTool(dir)
	out, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"Engineering","type":"department"}`))
	require.NoError(t, err)

	var res lookupResult
	require.NoError(t, json.Unmarshal(out, &res))
	assert.Equal(t, 12, res.Count)
	assert.Len(t, res.Results, MaxResults)
	assert.True(t, res.Limited)
}
