package kbharvest

import (
	"strings"
)

// defaultExcludePatterns lists boilerplate fragments removed from
// extracted content, keyed by source type. Matching is case-insensitive
// substring matching at paragraph granularity.
var defaultExcludePatterns = map[string][]string{
	TypeBlog: {
		"share this post",
		"subscribe to our",
		"sign up for our newsletter",
		"related posts",
		"leave a comment",
	},
	TypeNewsletter: {
		"share this post",
		"subscribe now",
		"upgrade to paid",
		"thanks for reading",
		"forwarded this email",
	},
	TypeGuides: {
		"was this page helpful",
		"edit this page",
		"on this page",
	},
	TypeCompanies: {
		"book a demo",
		"start free trial",
	},
	TypeInterviewGuides: {
		"book a mock interview",
		"sign up to practice",
	},
}

// commonExcludePatterns are removed regardless of source type.
var commonExcludePatterns = []string{
	"cookie policy",
	"accept all cookies",
	"follow us on",
	"all rights reserved",
}

// ExcludePatterns merges the common patterns, the per-type defaults, and
// the source's own patterns.
func ExcludePatterns(srcType string, extra []string) []string {
	patterns := make([]string, 0, len(commonExcludePatterns)+len(extra))
	patterns = append(patterns, commonExcludePatterns...)
	patterns = append(patterns, defaultExcludePatterns[srcType]...)
	patterns = append(patterns, extra...)
	return patterns
}

// CleanContent removes paragraphs matching any of the given patterns and
// collapses excess blank lines. Paragraphs are blocks separated by blank
// lines; matching is case-insensitive substring matching.
func CleanContent(text string, patterns []string) string {
	lowered := make([]string, len(patterns))
	for i, p := range patterns {
		lowered[i] = strings.ToLower(p)
	}

	var kept []string
	for _, para := range strings.Split(text, "\n\n") {
		trimmed := strings.TrimSpace(para)
		if trimmed == "" {
			continue
		}
		if matchesAny(strings.ToLower(trimmed), lowered) {
			continue
		}
		kept = append(kept, trimmed)
	}
	return strings.Join(kept, "\n\n")
}

func matchesAny(text string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(text, p) {
			return true
		}
	}
	return false
}
