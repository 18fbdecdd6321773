// Package calc implements the calculator tool: general arithmetic plus the
// HR-specific calculations (vacation balances, percentages, proration, time
// conversion, working days).
package calc

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Calculation types accepted by the tool.
const (
	TypeGeneral            = "general"
	TypeVacation           = "vacation_calculation"
	TypePercentage         = "percentage"
	TypeProrated           = "prorated_calculation"
	TypeTime               = "time_calculation"
	TypeMonthlyWorkingDays = "monthly_working_days"
)

// Tool is the calculator exposed to the model.
type Tool struct{}

// NewTool creates the calculator tool.
func NewTool() *Tool { return &Tool{} }

// Name implements tools.Tool.
func (t *Tool) Name() string { return "calculator" }

// Description implements tools.Tool.
func (t *Tool) Description() string {
	return "Performs mathematical calculations including basic arithmetic, percentages, and HR-related calculations"
}

// Parameters implements tools.Tool.
func (t *Tool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"expression": map[string]interface{}{
				"type":        "string",
				"description": `Mathematical expression to evaluate (e.g., "15 + 3 * 2")`,
			},
			"type": map[string]interface{}{
				"type": "string",
				"enum": []string{
					TypeGeneral, TypeVacation, TypePercentage,
					TypeProrated, TypeTime, TypeMonthlyWorkingDays,
				},
				"description": "Type of calculation to perform",
			},
			"context": map[string]interface{}{
				"type":        "object",
				"description": "Context for specialized calculations",
				"properties": map[string]interface{}{
					"currentBalance": map[string]interface{}{"type": "number", "description": "Current vacation balance"},
					"daysToTake":     map[string]interface{}{"type": "number", "description": "Days to take off"},
					"accrualRate":    map[string]interface{}{"type": "number", "description": "Vacation accrual rate per pay period"},
					"payPeriods":     map[string]interface{}{"type": "number", "description": "Number of pay periods"},
					"startDate":      map[string]interface{}{"type": "string", "description": "Start date (YYYY-MM-DD)"},
					"endDate":        map[string]interface{}{"type": "string", "description": "End date (YYYY-MM-DD)"},
					"value":          map[string]interface{}{"type": "number", "description": "Value for percentage calculation"},
					"total":          map[string]interface{}{"type": "number", "description": "Total for percentage calculation"},
					"percentage":     map[string]interface{}{"type": "number", "description": "Percentage value"},
					"annualAmount":   map[string]interface{}{"type": "number", "description": "Annual amount for proration"},
					"daysWorked":     map[string]interface{}{"type": "number", "description": "Days worked for proration"},
					"totalDays":      map[string]interface{}{"type": "number", "description": "Total days in period"},
					"hoursPerDay":    map[string]interface{}{"type": "number", "description": "Hours per day"},
					"daysPerWeek":    map[string]interface{}{"type": "number", "description": "Days per week"},
					"totalHours":     map[string]interface{}{"type": "number", "description": "Total hours"},
					"month":          map[string]interface{}{"type": "number", "description": "Month number (1-12) for monthly working days calculation"},
					"year":           map[string]interface{}{"type": "number", "description": "Year for monthly working days calculation"},
				},
			},
		},
		"required": []string{},
	}
}

// calcContext carries the optional inputs for the specialized calculations.
// Pointers distinguish absent fields from zero values.
type calcContext struct {
	CurrentBalance *float64 `json:"currentBalance,omitempty"`
	DaysToTake     *float64 `json:"daysToTake,omitempty"`
	AccrualRate    *float64 `json:"accrualRate,omitempty"`
	PayPeriods     *float64 `json:"payPeriods,omitempty"`
	StartDate      string   `json:"startDate,omitempty"`
	EndDate        string   `json:"endDate,omitempty"`
	Value          *float64 `json:"value,omitempty"`
	Total          *float64 `json:"total,omitempty"`
	Percentage     *float64 `json:"percentage,omitempty"`
	AnnualAmount   *float64 `json:"annualAmount,omitempty"`
	DaysWorked     *float64 `json:"daysWorked,omitempty"`
	TotalDays      *float64 `json:"totalDays,omitempty"`
	HoursPerDay    *float64 `json:"hoursPerDay,omitempty"`
	DaysPerWeek    *float64 `json:"daysPerWeek,omitempty"`
	WeeksPerYear   *float64 `json:"weeksPerYear,omitempty"`
	TotalHours     *float64 `json:"totalHours,omitempty"`
	Month          int      `json:"month,omitempty"`
	Year           int      `json:"year,omitempty"`
}

type calcArgs struct {
	Expression string      `json:"expression"`
	Type       string      `json:"type"`
	Context    calcContext `json:"context"`
}

type calcResult struct {
	Success     bool        `json:"success"`
	Result      interface{} `json:"result"`
	Explanation string      `json:"explanation"`
	Expression  string      `json:"expression,omitempty"`
	Type        string      `json:"type"`
}

// Execute implements tools.Tool.
func (t *Tool) Execute(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var in calcArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("parsing calculator arguments: %w", err)
	}
	if in.Type == "" {
		in.Type = TypeGeneral
	}
	// Every type except monthly_working_days demands an expression, even
	// the structured ones that compute from context and ignore it.
	if in.Expression == "" && in.Type != TypeMonthlyWorkingDays {
		return nil, fmt.Errorf("expression parameter is required")
	}

	var (
		result      interface{}
		explanation string
		err         error
	)
	switch in.Type {
	case TypeVacation:
		result, explanation = vacationCalculation(in.Context)
	case TypePercentage:
		result, explanation = percentageCalculation(in.Context)
	case TypeProrated:
		result, explanation, err = proratedCalculation(in.Context)
	case TypeTime:
		result, explanation = timeCalculation(in.Context)
	case TypeMonthlyWorkingDays:
		result, explanation, err = monthlyWorkingDays(in.Context)
	default:
		var v float64
		v, err = evalExpression(in.Expression)
		result = v
		explanation = fmt.Sprintf("Calculation: %s = %v", in.Expression, v)
	}
	if err != nil {
		return nil, err
	}

	return json.Marshal(calcResult{
		Success:     true,
		Result:      result,
		Explanation: explanation,
		Expression:  in.Expression,
		Type:        in.Type,
	})
}

func vacationCalculation(c calcContext) (map[string]interface{}, string) {
	result := map[string]interface{}{}
	var explanation strings.Builder

	if c.CurrentBalance != nil && c.DaysToTake != nil {
		remaining := *c.CurrentBalance - *c.DaysToTake
		result["remaining_balance"] = remaining
		result["sufficient_balance"] = remaining >= 0
		deficit := 0.0
		if remaining < 0 {
			deficit = math.Abs(remaining)
		}
		result["deficit"] = deficit

		fmt.Fprintf(&explanation, "After taking %v days off, you would have %v vacation days remaining. ", *c.DaysToTake, remaining)
		if remaining < 0 {
			fmt.Fprintf(&explanation, "You would need %v additional days to cover this request. ", deficit)
		}
	}

	if c.AccrualRate != nil && c.PayPeriods != nil {
		accrual := *c.AccrualRate * *c.PayPeriods
		result["accrual_amount"] = accrual
		taking := 0.0
		if c.DaysToTake != nil {
			taking = *c.DaysToTake
		}
		if c.CurrentBalance != nil {
			result["projected_balance"] = *c.CurrentBalance + accrual - taking
		}
		fmt.Fprintf(&explanation, "You accrue %v vacation days over this period. ", accrual)
	}

	if c.StartDate != "" && c.EndDate != "" {
		if days, err := workingDaysBetween(c.StartDate, c.EndDate); err == nil {
			result["working_days"] = days
			fmt.Fprintf(&explanation, "This spans %d working days. ", days)
		}
	}

	return result, strings.TrimSpace(explanation.String())
}

func percentageCalculation(c calcContext) (map[string]interface{}, string) {
	result := map[string]interface{}{}
	var explanation strings.Builder

	if c.Value != nil && c.Total != nil {
		pct := (*c.Value / *c.Total) * 100
		result["percentage"] = pct
		result["formatted_percentage"] = fmt.Sprintf("%.2f%%", pct)
		fmt.Fprintf(&explanation, "This represents %.2f%% of the total. ", pct)
	}
	if c.Percentage != nil && c.Total != nil {
		v := (*c.Percentage / 100) * *c.Total
		result["value"] = v
		fmt.Fprintf(&explanation, "The calculated value is %v. ", v)
	}
	if c.Percentage != nil && c.Value != nil {
		result["total"] = *c.Value / (*c.Percentage / 100)
	}

	return result, strings.TrimSpace(explanation.String())
}

func proratedCalculation(c calcContext) (map[string]interface{}, string, error) {
	totalDays := 365.0
	if c.TotalDays != nil {
		totalDays = *c.TotalDays
	}

	result := map[string]interface{}{}
	var explanation strings.Builder

	if c.AnnualAmount != nil && c.DaysWorked != nil {
		result["prorated_amount"] = (*c.AnnualAmount / totalDays) * *c.DaysWorked
		result["daily_rate"] = *c.AnnualAmount / totalDays
	}

	if c.StartDate != "" && c.EndDate != "" && c.AnnualAmount != nil {
		days, err := daysBetween(c.StartDate, c.EndDate)
		if err != nil {
			return nil, "", err
		}
		result["prorated_amount"] = (*c.AnnualAmount / totalDays) * float64(days)
		result["days_calculated"] = days
	}

	if v, ok := result["prorated_amount"].(float64); ok {
		fmt.Fprintf(&explanation, "The prorated amount is %.2f. ", v)
	}
	if v, ok := result["daily_rate"].(float64); ok {
		fmt.Fprintf(&explanation, "Daily rate: %.2f. ", v)
	}

	return result, strings.TrimSpace(explanation.String()), nil
}

func timeCalculation(c calcContext) (map[string]interface{}, string) {
	hoursPerDay := 8.0
	if c.HoursPerDay != nil {
		hoursPerDay = *c.HoursPerDay
	}
	daysPerWeek := 5.0
	if c.DaysPerWeek != nil {
		daysPerWeek = *c.DaysPerWeek
	}
	weeksPerYear := 52.0
	if c.WeeksPerYear != nil {
		weeksPerYear = *c.WeeksPerYear
	}

	result := map[string]interface{}{}
	var explanation strings.Builder

	if c.TotalHours != nil {
		days := *c.TotalHours / hoursPerDay
		result["days"] = days
		result["weeks"] = days / daysPerWeek
	}
	if c.TotalDays != nil {
		hours := *c.TotalDays * hoursPerDay
		result["hours"] = hours
		result["weeks"] = *c.TotalDays / daysPerWeek
		fmt.Fprintf(&explanation, "%v hours equals %v days. ", hours, *c.TotalDays)
	}

	result["annual_hours"] = hoursPerDay * daysPerWeek * weeksPerYear
	result["annual_days"] = daysPerWeek * weeksPerYear

	if w, ok := result["weeks"].(float64); ok {
		fmt.Fprintf(&explanation, "This is approximately %.2f weeks. ", w)
	}

	return result, strings.TrimSpace(explanation.String())
}

var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

func monthlyWorkingDays(c calcContext) (map[string]interface{}, string, error) {
	if c.Month == 0 || c.Year == 0 {
		return nil, "", fmt.Errorf("month and year are required for monthly working days calculation")
	}
	if c.Month < 1 || c.Month > 12 {
		return nil, "", fmt.Errorf("month must be between 1 and 12")
	}

	days := workingDaysInMonth(c.Month, c.Year)
	name := monthNames[c.Month-1]

	result := map[string]interface{}{
		"month":       c.Month,
		"year":        c.Year,
		"monthName":   name,
		"workingDays": days,
	}
	explanation := fmt.Sprintf(
		"In %s %d, there are %d working days. This calculation assumes that weekends (Saturdays and Sundays) are not considered working days. "+
			"If there are any public holidays that month, they have not been accounted for in this calculation. "+
			"Please adjust accordingly for any holidays specific to your location or company policy.",
		name, c.Year, days,
	)
	return result, explanation, nil
}

// workingDaysInMonth counts weekdays in a calendar month. Public holidays
// are not subtracted.
func workingDaysInMonth(month, year int) int {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	days := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}

// workingDaysBetween counts weekdays in the inclusive date range.
func workingDaysBetween(startDate, endDate string) (int, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return 0, fmt.Errorf("parsing start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return 0, fmt.Errorf("parsing end date: %w", err)
	}

	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days, nil
}

// daysBetween returns the calendar-day distance between two dates.
func daysBetween(startDate, endDate string) (int, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return 0, fmt.Errorf("parsing start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return 0, fmt.Errorf("parsing end date: %w", err)
	}
	return int(math.Ceil(end.Sub(start).Hours() / 24)), nil
}
