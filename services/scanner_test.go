package services

import (
	"testing"
	"unicode/utf8"

	"github.com/opengrove/commune-api/models"
	"github.com/stretchr/testify/assert"
)

func TestScanCensorsWholeWords(t *testing.T) {
	scanner := &ScannerService{}
	cfg := &PolicyConfig{ProhibitedWords: []string{"spam"}}

	result := scanner.Scan("do not post SPAM here", cfg)

	assert.False(t, result.Clean)
	assert.True(t, result.Violated)
	assert.Equal(t, models.ViolationProhibitedContent, result.Kind)
	assert.Equal(t, "do not post **** here", result.CensoredText)

	// Censorship preserves the length of the text
	assert.Equal(t, len("do not post SPAM here"), len(result.CensoredText))
}

func TestScanIgnoresSubstrings(t *testing.T) {
	scanner := &ScannerService{}
	cfg := &PolicyConfig{ProhibitedWords: []string{"cat"}}

	// "cat" appears only inside a larger word, so nothing matches
	result := scanner.Scan("browse the category list", cfg)

	assert.True(t, result.Clean)
	assert.False(t, result.Violated)
	assert.Empty(t, result.CensoredText)
}

func TestScanIsIdempotent(t *testing.T) {
	scanner := &ScannerService{}
	cfg := &PolicyConfig{
		ProhibitedWords: []string{"spam", "scam"},
		BlockedDomains:  []string{"evil.example"},
	}

	first := scanner.Scan("spam and a scam at https://evil.example/page", cfg)
	assert.True(t, first.Violated)

	// Rescanning the censored output finds nothing further
	second := scanner.Scan(first.CensoredText, cfg)
	assert.True(t, second.Clean)
	assert.Empty(t, second.CensoredText)
}

func TestScanBlockedDomains(t *testing.T) {
	scanner := &ScannerService{}
	cfg := &PolicyConfig{BlockedDomains: []string{"example.com"}}

	result := scanner.Scan("look at https://shop.example.com/deal today", cfg)

	assert.True(t, result.Violated)
	assert.Equal(t, models.ViolationBlockedLink, result.Kind)
	assert.Equal(t, "look at "+LinkPlaceholder+" today", result.CensoredText)

	// An unrelated domain passes through untouched
	clean := scanner.Scan("look at https://example.org/deal today", cfg)
	assert.True(t, clean.Clean)
	assert.Empty(t, clean.CensoredText)

	// The suffix match is on domain labels, not raw string suffixes
	lookalike := scanner.Scan("look at https://notexample.com/deal today", cfg)
	assert.True(t, lookalike.Clean)
}

func TestScanKindPrecedence(t *testing.T) {
	scanner := &ScannerService{}
	cfg := &PolicyConfig{
		ProhibitedWords: []string{"spam"},
		BlockedDomains:  []string{"example.com"},
	}

	// When both occur, the prohibited word decides the recorded kind
	result := scanner.Scan("spam at https://example.com/x", cfg)
	assert.True(t, result.Violated)
	assert.Equal(t, models.ViolationProhibitedContent, result.Kind)
}

func TestScanEmptyConfigIsNoOp(t *testing.T) {
	scanner := &ScannerService{}
	result := scanner.Scan("anything at all https://example.com", &PolicyConfig{})

	assert.True(t, result.Clean)
	assert.False(t, result.Violated)
	assert.Empty(t, result.CensoredText)
}

func TestScanSkipsBlankConfiguredWords(t *testing.T) {
	scanner := &ScannerService{}
	cfg := &PolicyConfig{ProhibitedWords: []string{"", "   ", "spam"}}

	result := scanner.Scan("no spam please", cfg)
	assert.True(t, result.Violated)
	assert.Equal(t, "no **** please", result.CensoredText)
}

func TestScanCensorsNonAsciiWords(t *testing.T) {
	scanner := &ScannerService{}
	cfg := &PolicyConfig{ProhibitedWords: []string{"übel"}}

	input := "das ist übel wirklich"
	result := scanner.Scan(input, cfg)

	assert.True(t, result.Violated)
	assert.Equal(t, "das ist **** wirklich", result.CensoredText)

	// Asterisks are counted per character, not per byte, so the text
	// keeps its visible length
	assert.Equal(t, utf8.RuneCountInString(input), utf8.RuneCountInString(result.CensoredText))

	// Case folding covers non-ASCII letters too
	upper := scanner.Scan("das ist ÜBEL wirklich", cfg)
	assert.True(t, upper.Violated)
	assert.Equal(t, "das ist **** wirklich", upper.CensoredText)
}

func TestScanNonAsciiWholeWordBoundaries(t *testing.T) {
	scanner := &ScannerService{}
	cfg := &PolicyConfig{ProhibitedWords: []string{"müll"}}

	// Inside a larger word it is a substring, not a match
	substring := scanner.Scan("der müllberg wächst", cfg)
	assert.True(t, substring.Clean)
	assert.Empty(t, substring.CensoredText)

	// Standing alone it matches
	result := scanner.Scan("der müll stinkt", cfg)
	assert.True(t, result.Violated)
	assert.Equal(t, "der **** stinkt", result.CensoredText)
}

func TestScanPlaceholderSurvivesRescan(t *testing.T) {
	scanner := &ScannerService{}
	cfg := &PolicyConfig{
		ProhibitedWords: []string{"link", "removed"},
		BlockedDomains:  []string{"evil.example"},
	}

	first := scanner.Scan("click this link https://evil.example/x", cfg)
	assert.True(t, first.Violated)
	assert.Equal(t, "click this **** "+LinkPlaceholder, first.CensoredText)

	// The placeholder itself contains nothing a configured word can
	// match, so rescanning censored output reports no fresh violation
	second := scanner.Scan(first.CensoredText, cfg)
	assert.True(t, second.Clean)
	assert.Empty(t, second.CensoredText)
}

func TestScanSkipsPunctuationOnlyWords(t *testing.T) {
	scanner := &ScannerService{}
	cfg := &PolicyConfig{ProhibitedWords: []string{"***", "spam"}}

	// An entry with no letters or digits is unusable and is dropped
	// rather than matching censored output
	result := scanner.Scan("stars *** and spam", cfg)
	assert.True(t, result.Violated)
	assert.Equal(t, "stars *** and ****", result.CensoredText)
}

func TestScanBlockedWordsAreNotViolations(t *testing.T) {
	scanner := &ScannerService{}
	cfg := &PolicyConfig{BlockedWords: []string{"heck"}}

	// The word is censored, but the author is not held in violation
	result := scanner.Scan("what the heck", cfg)
	assert.True(t, result.Clean)
	assert.False(t, result.Violated)
	assert.Equal(t, "what the ****", result.CensoredText)
}
