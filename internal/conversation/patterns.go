package conversation

import (
	"fmt"
	"regexp"
)

// Default confirmation/negation patterns. English terms are word-bounded;
// Bengali literals are matched as substrings because RE2 word boundaries only
// understand ASCII word characters. The supported locales are English (en)
// and Bengali (bn); deployments add locales via the extra pattern lists.
var (
	defaultAffirmationPatterns = []string{
		`\b(yes|yeah|sure|ok|okay|confirm|yep|correct|right)\b`,
		`(হ্যাঁ|ঠিক|করুন)`,
	}
	defaultNegationPatterns = []string{
		`\b(no|nope|cancel)\b`,
		`(না|বাতিল)`,
	}
)

// ReplyPatterns classifies short confirmation replies against a configurable
// per-locale pattern set. Matching is case-insensitive.
type ReplyPatterns struct {
	affirm []*regexp.Regexp
	negate []*regexp.Regexp
}

// NewReplyPatterns compiles the built-in patterns plus any extras. An invalid
// extra pattern is a configuration error and is reported immediately.
func NewReplyPatterns(extraAffirmations, extraNegations []string) (*ReplyPatterns, error) {
	affirm, err := compilePatterns(append(append([]string{}, defaultAffirmationPatterns...), extraAffirmations...))
	if err != nil {
		return nil, fmt.Errorf("conversation: affirmation pattern: %w", err)
	}
	negate, err := compilePatterns(append(append([]string{}, defaultNegationPatterns...), extraNegations...))
	if err != nil {
		return nil, fmt.Errorf("conversation: negation pattern: %w", err)
	}
	return &ReplyPatterns{affirm: affirm, negate: negate}, nil
}

// MustDefaultReplyPatterns returns the built-in pattern set. The defaults are
// compile-checked by tests, so failure here means a programming error.
func MustDefaultReplyPatterns() *ReplyPatterns {
	p, err := NewReplyPatterns(nil, nil)
	if err != nil {
		panic(err)
	}
	return p
}

// IsAffirmative reports whether the message confirms a pending appointment.
func (p *ReplyPatterns) IsAffirmative(message string) bool {
	return matchAny(p.affirm, message)
}

// IsNegative reports whether the message declines a pending appointment.
func (p *ReplyPatterns) IsNegative(message string) bool {
	return matchAny(p.negate, message)
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pat := range patterns {
		re, err := regexp.Compile(`(?i)` + pat)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", pat, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func matchAny(patterns []*regexp.Regexp, message string) bool {
	for _, re := range patterns {
		if re.MatchString(message) {
			return true
		}
	}
	return false
}
