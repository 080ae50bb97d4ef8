package services

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/opengrove/commune-api/models"
)

// LinkPlaceholder is the fixed token substituted for a link pointing at
// a blocked domain. It contains no letters or digits, so no configured
// word can ever match inside it and rescanning censored output stays a
// no-op.
const LinkPlaceholder = "[***]"

// urlPattern matches scheme://host/... tokens in submitted text
var urlPattern = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9+.-]*://[^\s]+`)

// ScanResult is the outcome of scanning one piece of submitted text
type ScanResult struct {
	// Clean is true when no violation was found
	Clean bool

	// Violated is true when the text contained prohibited words or
	// blocked links
	Violated bool

	// Kind is the violation kind to record. Prohibited words take
	// precedence over blocked links when both occur.
	Kind string

	// CensoredText is the filtered rendering of the text. It is empty
	// when nothing in the text was filtered.
	CensoredText string
}

// ScannerService matches submitted text against the policy
// configuration and produces a censored rendering of it
type ScannerService struct{}

// Scan checks the provided text against the policy configuration.
// Prohibited words are replaced with asterisk runs of the same length,
// so the shape of the message survives without revealing the content.
// Blocked words are censored the same way but do not count as a
// violation against the author. Links to blocked domains are replaced
// with a fixed placeholder.
func (s *ScannerService) Scan(text string, cfg *PolicyConfig) *ScanResult {

	censored := text
	violated := false
	kind := ""

	// Censor the prohibited words. Any match is a violation.
	if pattern := buildWordPattern(cfg.ProhibitedWords); pattern != nil {
		result, matched := censorWords(censored, pattern)
		censored = result
		if matched {
			violated = true
			kind = models.ViolationProhibitedContent
		}
	}

	// Censor the blocked words. These are filtered from the text but
	// are not held against the author.
	if pattern := buildWordPattern(cfg.BlockedWords); pattern != nil {
		censored, _ = censorWords(censored, pattern)
	}

	// Strip links pointing at blocked domains
	if len(cfg.BlockedDomains) > 0 {
		censored = urlPattern.ReplaceAllStringFunc(censored, func(match string) string {
			if !hostIsBlocked(match, cfg.BlockedDomains) {
				return match
			}
			violated = true
			if kind == "" {
				kind = models.ViolationBlockedLink
			}
			return LinkPlaceholder
		})
	}

	// Build the result. The censored text is only populated when
	// something was actually filtered, so callers can persist the
	// original unchanged otherwise.
	result := &ScanResult{
		Clean:    !violated,
		Violated: violated,
		Kind:     kind,
	}
	if censored != text {
		result.CensoredText = censored
	}
	return result

}

// buildWordPattern builds a single case-insensitive alternation from
// the word list. Entries with no letters or digits are skipped; a list
// with no usable entries yields nil, which the scanner treats as a
// no-op. Word boundaries are not part of the pattern: the regexp \b is
// ASCII-only, so candidates are verified against their neighboring
// runes in censorWords instead.
func buildWordPattern(words []string) *regexp.Regexp {

	escaped := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.TrimSpace(word)
		if !strings.ContainsFunc(word, isWordRune) {
			continue
		}
		escaped = append(escaped, regexp.QuoteMeta(word))
	}
	if len(escaped) == 0 {
		return nil
	}

	pattern, err := regexp.Compile(`(?i)(?:` + strings.Join(escaped, "|") + `)`)
	if err != nil {
		return nil
	}
	return pattern

}

// censorWords replaces every whole-word match of the pattern with an
// asterisk run of the same character count. Candidates flanked by a
// letter, digit, or underscore are substrings of a larger word and are
// left alone.
func censorWords(text string, pattern *regexp.Regexp) (string, bool) {

	matches := pattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text, false
	}

	var b strings.Builder
	matched := false
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if !isWholeWord(text, start, end) {
			continue
		}
		matched = true
		b.WriteString(text[last:start])
		b.WriteString(strings.Repeat("*", utf8.RuneCountInString(text[start:end])))
		last = end
	}
	if !matched {
		return text, false
	}
	b.WriteString(text[last:])
	return b.String(), true

}

// isWholeWord reports whether the span [start, end) is bounded by
// non-word runes on both sides
func isWholeWord(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// hostIsBlocked parses the host out of a URL token and tests it against
// the configured domain suffixes
func hostIsBlocked(token string, domains []string) bool {

	// Parse the host out of the token
	u, err := url.Parse(strings.TrimRight(token, ".,;!?)"))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if len(host) == 0 {
		return false
	}

	// A domain entry blocks the domain itself and every subdomain of it
	for _, domain := range domains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false

}
