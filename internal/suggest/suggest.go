// Package suggest extracts candidate ticket identifiers from branch names
// and ranks branches for a given ticket.
//
// Identifier grammars are provider-specific; a provider-neutral default is
// used when none is configured. Matching is token-bounded: ENG-1 never
// matches inside ENG-10.
package suggest

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Provider identifier grammars. All are matched case-insensitively against
// branch names and candidates are canonicalized to upper case, since branch
// naming conventions lowercase the key (feat/eng-123-auth).
var grammars = map[string]string{
	"linear": `[A-Z][A-Z0-9]{1,9}-\d+`,
	"jira":   `[A-Z][A-Z0-9]+-\d+`,
}

// defaultPattern is the provider-neutral grammar used when no provider is
// configured. Covers Linear- and Jira-style keys.
const defaultPattern = `[A-Z][A-Z0-9]{1,9}-\d+`

// Engine extracts and ranks ticket identifier candidates.
type Engine struct {
	re *regexp.Regexp
}

// New creates an Engine for the given provider. An explicit pattern
// overrides the provider grammar. An empty provider selects the neutral
// default.
func New(provider, pattern string) (*Engine, error) {
	if pattern == "" {
		var ok bool
		if pattern, ok = grammars[provider]; !ok {
			if provider != "" {
				return nil, fmt.Errorf("unknown provider %q (supported: linear, jira)", provider)
			}
			pattern = defaultPattern
		}
	}

	re, err := regexp.Compile(`(?i)` + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid identifier pattern: %w", err)
	}
	return &Engine{re: re}, nil
}

// Extract returns the ticket identifiers appearing in a branch name as
// whole tokens, upper-cased and deduplicated, in order of appearance.
// A candidate bordered by an alphanumeric character is rejected, so ENG-1
// is not extracted from feat/eng-10.
func (e *Engine) Extract(branch string) []string {
	var ids []string
	for _, loc := range e.re.FindAllStringIndex(branch, -1) {
		if !tokenBounded(branch, loc[0], loc[1]) {
			continue
		}
		id := strings.ToUpper(branch[loc[0]:loc[1]])
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// tokenBounded reports whether the match at [start, end) is delimited by
// non-alphanumeric characters (or the string edges).
func tokenBounded(s string, start, end int) bool {
	if start > 0 && isAlphanumeric(s[start-1]) {
		return false
	}
	if end < len(s) && isAlphanumeric(s[end]) {
		return false
	}
	return true
}

func isAlphanumeric(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// Rank orders candidate branches for a ticket by match confidence:
// exact token match first, then case-insensitive token match, then fuzzy
// matches over branches that carry no identifier at all. A branch whose
// extracted identifiers name a different ticket is never suggested.
func (e *Engine) Rank(ticketID string, branches []string) []string {
	var exact, insensitive []string
	var fuzzyPool []string

	for _, branch := range branches {
		ids := e.Extract(branch)
		if len(ids) == 0 {
			fuzzyPool = append(fuzzyPool, branch)
			continue
		}
		if !slices.Contains(ids, strings.ToUpper(ticketID)) {
			// Identifies a different ticket: not a candidate
			continue
		}
		if containsToken(branch, ticketID) {
			exact = append(exact, branch)
		} else {
			insensitive = append(insensitive, branch)
		}
	}

	ranked := append(exact, insensitive...)
	for _, m := range fuzzy.Find(strings.ToLower(ticketID), lowercase(fuzzyPool)) {
		ranked = append(ranked, fuzzyPool[m.Index])
	}
	return ranked
}

// containsToken reports whether id appears case-sensitively as a whole
// token in branch.
func containsToken(branch, id string) bool {
	for start := 0; ; {
		i := strings.Index(branch[start:], id)
		if i == -1 {
			return false
		}
		i += start
		if tokenBounded(branch, i, i+len(id)) {
			return true
		}
		start = i + 1
	}
}

func lowercase(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
