// Package employee provides the employee directory backing the
// employee_lookup tool. Records come from an embedded CSV snapshot of the
// HR system; lookups are read-only.
package employee

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pathways-2/Agent-Chatbot/internal/guardrails"
	"github.com/pathways-2/Agent-Chatbot/patterns"
)

// Record is one employee row, keyed by CSV header.
type Record map[string]string

// ID returns the employee identifier.
func (r Record) ID() string { return r["employee_id"] }

// Name returns the employee's full name.
func (r Record) Name() string {
	return r["first_name"] + " " + r["last_name"]
}

// Directory is an in-memory employee directory loaded from CSV.
type Directory struct {
	records []Record
}

// NewDirectory loads the embedded employee snapshot.
func NewDirectory() (*Directory, error) {
	return NewDirectoryFromCSV(patterns.EmployeeCSV())
}

// NewDirectoryFromCSV parses a directory from raw CSV data. The first row
// is the header; every data row must have the same width.
func NewDirectoryFromCSV(data []byte) (*Directory, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing employee csv: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("employee csv has no header row")
	}

	header := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(header))
		for i, col := range header {
			rec[col] = row[i]
		}
		records = append(records, rec)
	}
	return &Directory{records: records}, nil
}

// Len returns the number of loaded records.
func (d *Directory) Len() int { return len(d.records) }

// SearchByName finds employees whose name contains the query,
// case-insensitive. An exact full-name match sorts first.
func (d *Directory) SearchByName(name string) []Record {
	term := strings.ToLower(strings.TrimSpace(name))
	var results []Record
	for _, emp := range d.records {
		full := strings.ToLower(emp.Name())
		first := strings.ToLower(emp["first_name"])
		last := strings.ToLower(emp["last_name"])

		switch {
		case full == term:
			results = append([]Record{emp}, results...)
		case strings.Contains(full, term) ||
			strings.Contains(first, term) ||
			strings.Contains(last, term):
			results = append(results, emp)
		}
	}
	return results
}

// SearchByID finds the employee with the given ID, or nil.
func (d *Directory) SearchByID(id string) Record {
	for _, emp := range d.records {
		if emp.ID() == id {
			return emp
		}
	}
	return nil
}

// SearchByEmail finds the employee with the given email, case-insensitive.
func (d *Directory) SearchByEmail(email string) Record {
	for _, emp := range d.records {
		if strings.EqualFold(emp["email"], email) {
			return emp
		}
	}
	return nil
}

// SearchByDepartment finds employees whose department contains the query.
func (d *Directory) SearchByDepartment(department string) []Record {
	return d.searchField("department", department)
}

// SearchByJobTitle finds employees whose job title contains the query.
func (d *Directory) SearchByJobTitle(title string) []Record {
	return d.searchField("job_title", title)
}

// SearchBySupervisor finds employees reporting to the named supervisor.
func (d *Directory) SearchBySupervisor(name string) []Record {
	return d.searchField("supervisor_name", name)
}

func (d *Directory) searchField(field, query string) []Record {
	term := strings.ToLower(query)
	var results []Record
	for _, emp := range d.records {
		if strings.Contains(strings.ToLower(emp[field]), term) {
			results = append(results, emp)
		}
	}
	return results
}

var (
	numericQuery = regexp.MustCompile(`^\d+$`)
	fullNameForm = regexp.MustCompile(`^[A-Z][a-z]+ [A-Z][a-z]+`)
)

// SmartSearch guesses what the query identifies and searches accordingly:
// all-digits reads as an employee ID, an @ as an email, a capitalized pair
// as a name, then department, job title, and finally partial name. The
// returned type names the interpretation that produced results.
func (d *Directory) SmartSearch(query string) ([]Record, string) {
	if numericQuery.MatchString(query) {
		if emp := d.SearchByID(query); emp != nil {
			return []Record{emp}, "employee_id"
		}
	}
	if strings.Contains(query, "@") {
		if emp := d.SearchByEmail(query); emp != nil {
			return []Record{emp}, "email"
		}
	}
	if fullNameForm.MatchString(query) {
		if emps := d.SearchByName(query); len(emps) > 0 {
			return emps, "name"
		}
	}
	if emps := d.SearchByDepartment(query); len(emps) > 0 {
		return emps, "department"
	}
	if emps := d.SearchByJobTitle(query); len(emps) > 0 {
		return emps, "job_title"
	}
	if emps := d.SearchByName(query); len(emps) > 0 {
		return emps, "name_partial"
	}
	return nil, "unknown"
}

// VacationBalance summarizes an employee's leave balances, or nil if the
// employee does not exist.
func (d *Directory) VacationBalance(employeeID string) map[string]interface{} {
	emp := d.SearchByID(employeeID)
	if emp == nil {
		return nil
	}
	return map[string]interface{}{
		"employee_id":      emp.ID(),
		"name":             emp.Name(),
		"vacation_balance": parseFloat(emp["vacation_balance"]),
		"sick_balance":     parseFloat(emp["sick_balance"]),
		"personal_balance": parseFloat(emp["personal_balance"]),
	}
}

// VacationAfterLeave projects an employee's vacation balance after taking
// the given number of days.
func (d *Directory) VacationAfterLeave(employeeID string, daysToTake float64) map[string]interface{} {
	emp := d.SearchByID(employeeID)
	if emp == nil {
		return nil
	}
	current := parseFloat(emp["vacation_balance"])
	remaining := current - daysToTake
	return map[string]interface{}{
		"employee_id":        emp.ID(),
		"name":               emp.Name(),
		"current_balance":    current,
		"days_to_take":       daysToTake,
		"remaining_balance":  remaining,
		"sufficient_balance": remaining >= 0,
	}
}

// BenefitsInfo summarizes an employee's benefits enrollment.
func (d *Directory) BenefitsInfo(employeeID string) map[string]interface{} {
	emp := d.SearchByID(employeeID)
	if emp == nil {
		return nil
	}
	return map[string]interface{}{
		"employee_id":          emp.ID(),
		"name":                 emp.Name(),
		"benefits_eligible":    emp["benefits_eligible"],
		"health_insurance":     emp["health_insurance"],
		"dental_insurance":     emp["dental_insurance"],
		"vision_insurance":     emp["vision_insurance"],
		"life_insurance":       emp["life_insurance"],
		"disability_insurance": emp["disability_insurance"],
		"retirement_plan":      emp["retirement_plan"],
	}
}

// PerformanceInfo summarizes an employee's review history.
func (d *Directory) PerformanceInfo(employeeID string) map[string]interface{} {
	emp := d.SearchByID(employeeID)
	if emp == nil {
		return nil
	}
	return map[string]interface{}{
		"employee_id":             emp.ID(),
		"name":                    emp.Name(),
		"last_performance_review": emp["last_performance_review"],
		"performance_rating":      emp["performance_rating"],
		"next_review_date":        emp["next_review_date"],
	}
}

// DepartmentStats aggregates headcount by department.
func (d *Directory) DepartmentStats() map[string]map[string]int {
	stats := make(map[string]map[string]int)
	for _, emp := range d.records {
		dept := emp["department"]
		s, ok := stats[dept]
		if !ok {
			s = map[string]int{}
			stats[dept] = s
		}
		s["total_employees"]++
		if emp["employment_type"] == "Full-time" {
			s["full_time"]++
		} else {
			s["part_time"]++
		}
		if emp["employment_status"] == "Active" {
			s["active"]++
		}
	}
	return stats
}

// Display flattens a record into the response shape. The result passes
// through the guardrail allowlist, which is the single authority on what
// employee fields may leave the backend.
func Display(emp Record) map[string]string {
	if emp == nil {
		return nil
	}
	return guardrails.FilterEmployeeRecord(map[string]string{
		"employee_id":        emp.ID(),
		"name":               emp.Name(),
		"email":              emp["email"],
		"department":         emp["department"],
		"job_title":          emp["job_title"],
		"supervisor":         emp["supervisor_name"],
		"employment_status":  emp["employment_status"],
		"hire_date":          emp["hire_date"],
		"employment_type":    emp["employment_type"],
		"location":           emp["location"],
		"phone":              emp["phone"],
		"emergency_contact":  emp["emergency_contact"],
		"emergency_phone":    emp["emergency_phone"],
		"vacation_balance":   emp["vacation_balance"],
		"sick_balance":       emp["sick_balance"],
		"personal_balance":   emp["personal_balance"],
		"benefits_eligible":  emp["benefits_eligible"],
		"performance_rating": emp["performance_rating"],
		"next_review_date":   emp["next_review_date"],
	})
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
