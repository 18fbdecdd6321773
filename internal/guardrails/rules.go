package guardrails

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/pathways-2/Agent-Chatbot/patterns"
)

// RuleFile is the YAML shape of the embedded guardrail rule lists.
type RuleFile struct {
	ProhibitedWords     []string `yaml:"prohibited_words"`
	BulkRequestPatterns []string `yaml:"bulk_request_patterns"`
	SensitiveTopics     []string `yaml:"sensitive_topics"`
	NonHRTopics         []string `yaml:"non_hr_topics"`
	SuspiciousPatterns  []string `yaml:"suspicious_patterns"`
}

// DefaultRules returns the built-in rule lists parsed from the embedded
// guardrails.yaml file.
func DefaultRules() (*RuleFile, error) {
	var rf RuleFile
	if err := yaml.Unmarshal(patterns.GuardrailsYAML(), &rf); err != nil {
		return nil, fmt.Errorf("parsing embedded guardrail rules: %w", err)
	}
	return &rf, nil
}

// compileWordList compiles each term into a case-insensitive whole-word
// matcher. Multi-word terms ("social security") match as a whole phrase.
func compileWordList(words []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("compiling word rule %q: %w", w, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// compilePatternList compiles raw regular expressions from the rule file.
func compilePatternList(exprs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		re, err := regexp.Compile(e)
		if err != nil {
			return nil, fmt.Errorf("compiling pattern rule %q: %w", e, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func matchAny(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
