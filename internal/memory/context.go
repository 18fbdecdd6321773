package memory

import (
	"regexp"
	"strings"
)

// namePattern matches a capitalized first-plus-last name pair. It will also
// match capitalized phrases that are not names ("Human Resources"), which is
// tolerable: the context only biases tool lookups, it never gates access.
var namePattern = regexp.MustCompile(`\b([A-Z][a-z]+ [A-Z][a-z]+)\b`)

// topicRule maps trigger keywords to a topic label. Rules are checked in
// order and the first hit wins, so a message touching both vacation and
// salary reads as a vacation question.
type topicRule struct {
	topic    string
	keywords []string
}

var topicRules = []topicRule{
	{"vacation", []string{"vacation", "time off", "pto", "leave"}},
	{"salary", []string{"salary", "pay", "compensation", "wage"}},
	{"benefits", []string{"benefits", "insurance", "health", "dental", "vision"}},
	{"policy", []string{"policy", "rule", "procedure", "guideline"}},
	{"performance", []string{"performance", "review", "evaluation", "rating"}},
}

// updateContext refreshes the inferred context from one user message and
// reports whether a topic was detected. Fields only change when the message
// provides a new value; a message with no name keeps the previously
// mentioned employee.
func updateContext(c *Context, message string) (topicSet bool) {
	if m := namePattern.FindString(message); m != "" {
		c.LastMentionedEmployee = m
	}

	lower := strings.ToLower(message)
	for _, rule := range topicRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				c.CurrentTopic = rule.topic
				return true
			}
		}
	}
	return false
}
