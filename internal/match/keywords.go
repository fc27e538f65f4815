package match

import (
	"strings"

	"github.com/david/grantwise/internal/models"
)

// ExtractKeywords derives search tags from a project description. Every
// matching keyword family contributes its tag; a project matching nothing
// still gets the fallback tags so a search is never empty.
func ExtractKeywords(project models.ProjectDescription) []string {
	text := strings.ToLower(strings.Join([]string{
		project.ProjectName,
		project.Mission,
		project.Problem,
		project.Activities,
	}, " "))

	var tags []string
	for _, rule := range defaultTaxonomy.Keywords {
		if rule.re.MatchString(text) {
			tags = append(tags, rule.Tag)
		}
	}

	if len(tags) == 0 {
		return append([]string(nil), defaultTaxonomy.Fallback...)
	}
	return tags
}

// DetermineCategory maps a project to a Grants.gov funding-category code.
// Rules are tried in taxonomy order and the first match wins; an empty
// result means "search all categories".
func DetermineCategory(project models.ProjectDescription) string {
	text := strings.ToLower(strings.Join([]string{
		project.ProjectName,
		project.Mission,
		project.Problem,
	}, " "))

	for _, rule := range defaultTaxonomy.Categories {
		if rule.re.MatchString(text) {
			return rule.Code
		}
	}
	return ""
}
