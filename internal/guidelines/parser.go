// Package guidelines extracts structured constraints from free-form funder
// instructions and validates generated proposals against them.
package guidelines

import (
	"regexp"
	"strconv"
	"strings"
)

// Parsed holds every constraint recognized in a guidelines text. Fields a
// text never mentions stay at their zero value; that is a normal outcome,
// not an error.
type Parsed struct {
	WordLimit           *int     `json:"word_limit"`
	CharacterLimit      *int     `json:"character_limit"`
	RequiredSections    []string `json:"required_sections"`
	EligibilityCriteria []string `json:"eligibility_criteria"`
	Priorities          []string `json:"priorities"`
	Deadlines           []string `json:"deadlines"`
	Formatting          []string `json:"formatting"`
	Raw                 string   `json:"raw"`
}

// Limit phrasings vary across funders, so several candidate patterns are
// tried in a fixed order and the first hit wins.
var wordLimitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*word\s*limit`),
	regexp.MustCompile(`(?i)maximum\s*of\s*(\d+)\s*words`),
	regexp.MustCompile(`(?i)not\s*exceed\s*(\d+)\s*words`),
	regexp.MustCompile(`(?i)(\d+)\s*words?\s*maximum`),
	regexp.MustCompile(`(?i)limit\s*of\s*(\d+)\s*words`),
}

var charLimitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*character\s*limit`),
	regexp.MustCompile(`(?i)maximum\s*of\s*(\d+)\s*characters`),
	regexp.MustCompile(`(?i)not\s*exceed\s*(\d+)\s*characters`),
}

// Explicit section lists ("Required sections: A, B, C"). The captured
// remainder of the line is split on commas and semicolons.
var sectionListPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)required\s*sections?:?\s*([^\n]+)`),
	regexp.MustCompile(`(?i)must\s*include:?\s*([^\n]+)`),
	regexp.MustCompile(`(?i)proposal\s*should\s*contain:?\s*([^\n]+)`),
}

// canonicalSections are the standard grant-proposal section names matched
// anywhere in the text, in addition to explicitly listed ones.
var canonicalSections = []string{
	"executive summary",
	"problem statement",
	"project description",
	"goals and objectives",
	"methodology",
	"timeline",
	"budget",
	"evaluation",
	"sustainability",
	"organizational capacity",
	"impact",
}

var (
	eligibilityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)eligib(?:le|ility):?\s*([^\n]+)`),
		regexp.MustCompile(`(?i)must\s*be:?\s*([^\n]+)`),
		regexp.MustCompile(`(?i)applicants?\s*must:?\s*([^\n]+)`),
	}
	priorityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)priorit(?:y|ies):?\s*([^\n]+)`),
		regexp.MustCompile(`(?i)focus\s*areas?:?\s*([^\n]+)`),
		regexp.MustCompile(`(?i)we\s*fund:?\s*([^\n]+)`),
	}
	deadlinePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)deadline:?\s*([^\n]+)`),
		regexp.MustCompile(`(?i)due\s*date:?\s*([^\n]+)`),
		regexp.MustCompile(`(?i)submit\s*by:?\s*([^\n]+)`),
	}
	formattingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)format:?\s*([^\n]+)`),
		regexp.MustCompile(`(?i)font:?\s*([^\n]+)`),
		regexp.MustCompile(`(?i)spacing:?\s*([^\n]+)`),
		regexp.MustCompile(`(?i)margins?:?\s*([^\n]+)`),
	}
)

// Parse extracts structured constraints from raw guidelines text. It never
// fails: unmatched fields are left at their empty defaults.
func Parse(text string) Parsed {
	parsed := Parsed{Raw: text}

	parsed.WordLimit = firstLimit(text, wordLimitPatterns)
	parsed.CharacterLimit = firstLimit(text, charLimitPatterns)

	for _, pattern := range sectionListPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		for _, piece := range splitSectionList(match[1]) {
			parsed.RequiredSections = appendUnique(parsed.RequiredSections, piece)
		}
	}
	lower := strings.ToLower(text)
	for _, section := range canonicalSections {
		if strings.Contains(lower, section) {
			parsed.RequiredSections = appendUnique(parsed.RequiredSections, section)
		}
	}

	parsed.EligibilityCriteria = collectMatches(text, eligibilityPatterns)
	parsed.Priorities = collectMatches(text, priorityPatterns)
	parsed.Deadlines = collectMatches(text, deadlinePatterns)
	parsed.Formatting = collectMatches(text, formattingPatterns)

	return parsed
}

// firstLimit tries each pattern in order and returns the first strictly
// positive integer capture. A capture that fails to parse (or parses to
// zero) counts as no match for that pattern.
func firstLimit(text string, patterns []*regexp.Regexp) *int {
	for _, pattern := range patterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		n, err := strconv.Atoi(match[1])
		if err != nil || n <= 0 {
			continue
		}
		return &n
	}
	return nil
}

// collectMatches applies every pattern globally, appending each trimmed
// capture in pattern order then document order. No deduplication: repeated
// labels produce repeated entries.
func collectMatches(text string, patterns []*regexp.Regexp) []string {
	var out []string
	for _, pattern := range patterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			if v := strings.TrimSpace(match[1]); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func splitSectionList(block string) []string {
	var out []string
	for _, piece := range strings.FieldsFunc(block, func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		if piece = strings.TrimSpace(piece); piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

// appendUnique appends v unless the list already holds a case-insensitive
// equal entry, preserving first-seen order and casing.
func appendUnique(list []string, v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return list
	}
	lower := strings.ToLower(v)
	for _, existing := range list {
		if strings.ToLower(existing) == lower {
			return list
		}
	}
	return append(list, v)
}
