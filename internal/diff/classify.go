package diff

import "strings"

// Rule maps declared-type substrings to a comparison class.
type Rule struct {
	Class      Class
	Substrings []string
}

// defaultRules covers the declared-type spellings emitted by the describe
// commands we've seen. First matching rule wins; unmatched types fall back
// to textual.
var defaultRules = []Rule{
	{Class: ClassTextual, Substrings: []string{"VARCHAR", "STRING", "TEXT", "CHAR"}},
	{Class: ClassNumeric, Substrings: []string{"NUMBER", "INT", "FLOAT", "DECIMAL", "NUMERIC", "DOUBLE", "REAL"}},
}

// Classifier maps declared-type text to a comparison class. The rule table
// is data, not code: new spellings are added with Extend (typically from
// checkatron.toml) rather than by editing conditionals.
type Classifier struct {
	rules []Rule
}

// NewClassifier returns a classifier loaded with the default rule table.
func NewClassifier() *Classifier {
	rules := make([]Rule, len(defaultRules))
	copy(rules, defaultRules)
	return &Classifier{rules: rules}
}

// Extend prepends rules so they take precedence over the defaults.
func (c *Classifier) Extend(rules ...Rule) {
	c.rules = append(append([]Rule{}, rules...), c.rules...)
}

// Classify maps a declared type to its comparison class. Total over any
// input; unknown types classify as textual.
func (c *Classifier) Classify(declaredType string) Class {
	t := strings.ToUpper(declaredType)
	for _, rule := range c.rules {
		for _, sub := range rule.Substrings {
			if strings.Contains(t, sub) {
				return rule.Class
			}
		}
	}
	return ClassTextual
}
