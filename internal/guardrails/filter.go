package guardrails

import "regexp"

// Output masking patterns. The nine-digit pattern catches SSNs written
// without separators; it also masks any other bare nine-digit run, which
// is acceptable for this data set.
var (
	ssnDashed  = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	ssnBare    = regexp.MustCompile(`\b\d{9}\b`)
	dollarAmts = regexp.MustCompile(`\$\d+,?\d*`)
)

// FilterOutput masks personally identifiable and compensation data in
// outbound text. The operation is idempotent: replacement strings contain
// no digits, so filtering already-filtered text is a no-op.
func (e *Engine) FilterOutput(text string) string {
	text = ssnDashed.ReplaceAllString(text, "***-**-****")
	text = ssnBare.ReplaceAllString(text, "*********")
	text = dollarAmts.ReplaceAllString(text, "$***")
	return text
}

// Disclaim appends the disclaimer for kind to text. Unknown kinds fall
// back to the general disclaimer.
func (e *Engine) Disclaim(text string, kind DisclaimerKind) string {
	d, ok := disclaimers[kind]
	if !ok {
		d = disclaimers[DisclaimerGeneral]
	}
	return text + d
}

// SafeEmployeeFields is the allowlist of employee record fields that may
// leave the backend. It covers both the raw CSV spellings and the display
// spellings ("name", "supervisor") so the filter works on either shape.
// Compensation, insurance-detail, and government-ID fields are never on
// this list.
var SafeEmployeeFields = []string{
	"employee_id",
	"name",
	"first_name",
	"last_name",
	"email",
	"department",
	"job_title",
	"supervisor",
	"supervisor_name",
	"employment_status",
	"hire_date",
	"employment_type",
	"location",
	"phone",
	"emergency_contact",
	"emergency_phone",
	"vacation_balance",
	"sick_balance",
	"personal_balance",
	"benefits_eligible",
	"last_performance_review",
	"performance_rating",
	"next_review_date",
}

var safeFieldSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(SafeEmployeeFields))
	for _, f := range SafeEmployeeFields {
		m[f] = struct{}{}
	}
	return m
}()

// FilterEmployeeRecord returns a copy of rec with every field not on the
// allowlist removed.
func FilterEmployeeRecord(rec map[string]string) map[string]string {
	out := make(map[string]string, len(rec))
	for k, v := range rec {
		if _, ok := safeFieldSet[k]; ok {
			out[k] = v
		}
	}
	return out
}
