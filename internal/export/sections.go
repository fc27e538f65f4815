package export

import (
	"regexp"
	"strings"
)

// Section is one heading plus the body text beneath it.
type Section struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

const maxHeadingLength = 60

var headingPrefix = regexp.MustCompile(`(?i)^(Executive Summary|Problem Statement|Project Description|Goals|Objectives|Methodology|Timeline|Budget|Evaluation|Sustainability|Impact)`)

// ParseSections splits a generated proposal into headed sections. A line
// counts as a heading when it is short and all caps, short and ends with a
// colon, or starts with a standard proposal heading. Content before the
// first heading keeps an empty heading; a blank proposal comes back as a
// single "Grant Proposal" section.
func ParseSections(proposal string) []Section {
	var sections []Section
	current := Section{}

	for _, line := range strings.Split(proposal, "\n") {
		trimmed := strings.TrimSpace(line)

		isHeading := trimmed != "" &&
			((len(trimmed) < maxHeadingLength && trimmed == strings.ToUpper(trimmed)) ||
				(strings.HasSuffix(trimmed, ":") && len(trimmed) < maxHeadingLength) ||
				headingPrefix.MatchString(trimmed))

		switch {
		case isHeading:
			if strings.TrimSpace(current.Content) != "" {
				sections = append(sections, current)
			}
			current = Section{Heading: strings.TrimSuffix(trimmed, ":")}
		case trimmed != "":
			current.Content += line + "\n"
		default:
			current.Content += "\n"
		}
	}

	if strings.TrimSpace(current.Content) != "" {
		sections = append(sections, current)
	}

	if len(sections) == 0 {
		sections = append(sections, Section{Heading: "Grant Proposal", Content: proposal})
	}

	return sections
}
