package calc

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalExpression(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"15 + 3 * 2", 21},
		{"(2 + 3) * 4", 20},
		{"10 % 3", 1},
		{"7 / 2", 3.5},
		{"-5 + 2", -3},
		{"2 * (3 + (4 - 1))", 12},
		{"0.1 + 0.2", 0.3},
		{"100", 100},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := evalExpression(tc.expr)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestEvalExpressionInvalid(t *testing.T) {
	for _, expr := range []string{"", "abc", "2 +", "(2 + 3", "()"} {
		t.Run(expr, func(t *testing.T) {
			_, err := evalExpression(expr)
			assert.Error(t, err)
		})
	}
}

func TestEvalExpressionStripsLetters(t *testing.T) {
	// Non-arithmetic characters are dropped before parsing.
	got, err := evalExpression("calculate 2 + 2 please")
	require.NoError(t, err)
	assert.Equal(t, 4.0, got)
}

func execute(t *testing.T, args string) calcResult {
	t.Helper()
	out, err := NewTool().Execute(context.Background(), json.RawMessage(args))
	require.NoError(t, err)
	var res calcResult
	require.NoError(t, json.Unmarshal(out, &res))
	return res
}

func TestExecuteGeneral(t *testing.T) {
	res := execute(t, `{"expression":"15 + 3 * 2"}`)
	assert.True(t, res.Success)
	assert.Equal(t, TypeGeneral, res.Type)
	assert.Equal(t, 21.0, res.Result)
	assert.Contains(t, res.Explanation, "15 + 3 * 2 = 21")
}

func TestExecuteRequiresExpression(t *testing.T) {
	// monthly_working_days is the only type that works without one.
	for _, typ := range []string{"general", "vacation_calculation", "percentage", "prorated_calculation", "time_calculation"} {
		_, err := NewTool().Execute(context.Background(), json.RawMessage(`{"type":"`+typ+`"}`))
		require.Error(t, err, typ)
		assert.Contains(t, err.Error(), "expression parameter is required")
	}

	res := execute(t, `{"type":"monthly_working_days","context":{"month":8,"year":2026}}`)
	assert.True(t, res.Success)
}

func TestExecuteVacationCalculation(t *testing.T) {
	res := execute(t, `{"expression":"14.5 - 5","type":"vacation_calculation","context":{"currentBalance":14.5,"daysToTake":5}}`)
	m := res.Result.(map[string]interface{})
	assert.Equal(t, 9.5, m["remaining_balance"])
	assert.Equal(t, true, m["sufficient_balance"])
	assert.Equal(t, 0.0, m["deficit"])
	assert.Contains(t, res.Explanation, "9.5 vacation days remaining")
}

func TestExecuteVacationDeficit(t *testing.T) {
	res := execute(t, `{"expression":"3 - 5","type":"vacation_calculation","context":{"currentBalance":3,"daysToTake":5}}`)
	m := res.Result.(map[string]interface{})
	assert.Equal(t, -2.0, m["remaining_balance"])
	assert.Equal(t, false, m["sufficient_balance"])
	assert.Equal(t, 2.0, m["deficit"])
	assert.Contains(t, res.Explanation, "additional days")
}

func TestExecuteVacationWorkingDays(t *testing.T) {
	// Mon 2026-06-01 through Fri 2026-06-12 spans two full work weeks.
	res := execute(t, `{"expression":"10","type":"vacation_calculation","context":{"startDate":"2026-06-01","endDate":"2026-06-12"}}`)
	m := res.Result.(map[string]interface{})
	assert.Equal(t, 10.0, m["working_days"])
}

func TestExecutePercentage(t *testing.T) {
	res := execute(t, `{"expression":"25 / 200","type":"percentage","context":{"value":25,"total":200}}`)
	m := res.Result.(map[string]interface{})
	assert.Equal(t, 12.5, m["percentage"])
	assert.Equal(t, "12.50%", m["formatted_percentage"])

	res = execute(t, `{"expression":"40 * 15 / 100","type":"percentage","context":{"percentage":40,"total":15}}`)
	m = res.Result.(map[string]interface{})
	assert.Equal(t, 6.0, m["value"])
}

func TestExecuteProrated(t *testing.T) {
	res := execute(t, `{"expression":"365 / 365 * 90","type":"prorated_calculation","context":{"annualAmount":365,"daysWorked":90}}`)
	m := res.Result.(map[string]interface{})
	assert.Equal(t, 90.0, m["prorated_amount"])
	assert.Equal(t, 1.0, m["daily_rate"])
}

func TestExecuteTimeCalculation(t *testing.T) {
	res := execute(t, `{"expression":"80 / 8","type":"time_calculation","context":{"totalHours":80}}`)
	m := res.Result.(map[string]interface{})
	assert.Equal(t, 10.0, m["days"])
	assert.Equal(t, 2.0, m["weeks"])
	assert.Equal(t, 2080.0, m["annual_hours"])
	assert.Equal(t, 260.0, m["annual_days"])
}

func TestExecuteMonthlyWorkingDays(t *testing.T) {
	res := execute(t, `{"type":"monthly_working_days","context":{"month":6,"year":2026}}`)
	m := res.Result.(map[string]interface{})
	assert.Equal(t, "June", m["monthName"])
	assert.Equal(t, 22.0, m["workingDays"])
	assert.Contains(t, res.Explanation, "22 working days")
	assert.Contains(t, res.Explanation, "public holidays")
}

func TestExecuteMonthlyWorkingDaysValidation(t *testing.T) {
	_, err := NewTool().Execute(context.Background(), json.RawMessage(`{"type":"monthly_working_days","context":{"month":6}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "month and year are required")

	_, err = NewTool().Execute(context.Background(), json.RawMessage(`{"type":"monthly_working_days","context":{"month":13,"year":2026}}`))
	require.Error(t, err)
}

func TestWorkingDaysInMonth(t *testing.T) {
	// February 2026 starts on a Sunday and has 28 days: 20 weekdays.
	assert.Equal(t, 20, workingDaysInMonth(2, 2026))
	// August 2026 starts on a Saturday and has 31 days: 21 weekdays.
	assert.Equal(t, 21, workingDaysInMonth(8, 2026))
}
