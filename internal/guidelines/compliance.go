package guidelines

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Stats summarizes the measured dimensions of a checked proposal.
type Stats struct {
	WordCount        int `json:"word_count"`
	CharacterCount   int `json:"character_count"`
	SectionsFound    int `json:"sections_found"`
	SectionsRequired int `json:"sections_required"`
}

// Report is the outcome of checking a proposal against parsed guidelines.
// Compliant is true exactly when Issues is empty; Warnings never affect it.
type Report struct {
	Compliant bool     `json:"compliant"`
	Issues    []string `json:"issues"`
	Warnings  []string `json:"warnings"`
	Stats     Stats    `json:"stats"`
}

// wordLimitWarningRatio is the fraction of the word limit above which a
// near-limit warning is emitted.
const wordLimitWarningRatio = 0.95

// CheckCompliance validates a proposal against parsed guidelines. It is pure
// and deterministic and never fails.
func CheckCompliance(proposal string, parsed Parsed) Report {
	report := Report{Compliant: true}

	wordCount := len(strings.Fields(proposal))
	report.Stats.WordCount = wordCount

	if limit := parsed.WordLimit; limit != nil {
		switch {
		case wordCount > *limit:
			report.Compliant = false
			report.Issues = append(report.Issues,
				fmt.Sprintf("Exceeds word limit: %d words (limit: %d)", wordCount, *limit))
		case float64(wordCount) > float64(*limit)*wordLimitWarningRatio:
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("Close to word limit: %d/%d words", wordCount, *limit))
		}
	}

	charCount := utf8.RuneCountInString(proposal)
	report.Stats.CharacterCount = charCount

	if limit := parsed.CharacterLimit; limit != nil && charCount > *limit {
		report.Compliant = false
		report.Issues = append(report.Issues,
			fmt.Sprintf("Exceeds character limit: %d characters (limit: %d)", charCount, *limit))
	}

	lower := strings.ToLower(proposal)
	var missing []string
	for _, section := range parsed.RequiredSections {
		if !strings.Contains(lower, strings.ToLower(section)) {
			missing = append(missing, section)
		}
	}
	if len(missing) > 0 {
		report.Compliant = false
		report.Issues = append(report.Issues,
			fmt.Sprintf("Missing required sections: %s", strings.Join(missing, ", ")))
	}

	report.Stats.SectionsRequired = len(parsed.RequiredSections)
	report.Stats.SectionsFound = len(parsed.RequiredSections) - len(missing)

	return report
}
