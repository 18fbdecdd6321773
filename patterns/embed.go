// Package patterns provides embedded default data sets: guardrail rule
// definitions, the fallback HR policy corpus, and the demo employee roster.
// All three can be overridden at runtime via configuration; the embedded
// copies keep `hrbot serve` working with zero setup.
package patterns

import _ "embed"

//go:embed guardrails.yaml
var guardrailsYAML []byte

//go:embed hr_policies.yaml
var hrPoliciesYAML []byte

//go:embed employee_data.csv
var employeeCSV []byte

// GuardrailsYAML returns the embedded guardrail rule definitions.
func GuardrailsYAML() []byte { return guardrailsYAML }

// HRPoliciesYAML returns the embedded fallback HR policy corpus.
func HRPoliciesYAML() []byte { return hrPoliciesYAML }

// EmployeeCSV returns the embedded demo employee roster.
func EmployeeCSV() []byte { return employeeCSV }
