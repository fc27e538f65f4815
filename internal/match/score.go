package match

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/david/grantwise/internal/models"
)

// Sub-score caps. The four components sum to exactly 100, but each is
// capped independently and the total is clamped anyway.
const (
	keywordScoreCap   = 40
	pointsPerKeyword  = 5
	categoryScore     = 20
	budgetFitScore    = 20
	stillOpenScore    = 20
	maxRelevanceScore = 100

	// Words this short ("the", "with") match everything and carry no signal.
	minKeywordLength = 4
)

var leadingNumber = regexp.MustCompile(`\d+`)

// Score computes the 0-100 relevance of a grant to a project at the given
// evaluation time. Absent optional fields contribute nothing; they never
// cause an error.
func Score(grant models.GrantOpportunity, project models.ProjectDescription, now time.Time) int {
	projectText := strings.ToLower(strings.Join([]string{
		project.ProjectName,
		project.Mission,
		project.Problem,
		project.Activities,
	}, " "))
	grantText := strings.ToLower(strings.Join([]string{
		grant.Title,
		grant.Description,
		grant.Category,
	}, " "))

	score := 0

	// Keyword overlap: each project word longer than minKeywordLength that
	// appears as a whole token in the grant text earns points. Repeated
	// project words count each time they occur.
	grantWords := make(map[string]struct{})
	for _, w := range strings.Fields(grantText) {
		grantWords[w] = struct{}{}
	}
	matching := 0
	for _, w := range strings.Fields(projectText) {
		if len(w) <= minKeywordLength {
			continue
		}
		if _, ok := grantWords[w]; ok {
			matching++
		}
	}
	score += min(keywordScoreCap, matching*pointsPerKeyword)

	// Category named in the project's own text. The empty string is a
	// substring of every text, so a grant with no category keeps the credit.
	if strings.Contains(projectText, strings.ToLower(grant.Category)) {
		score += categoryScore
	}

	// Budget fit: the project budget's first embedded number must be
	// positive and within the award ceiling. No ceiling, no credit.
	if grant.AwardCeiling != nil {
		if amount, ok := budgetAmount(project.Budget); ok && float64(amount) <= *grant.AwardCeiling {
			score += budgetFitScore
		}
	}

	// Grant still open at evaluation time.
	if grant.CloseDate != nil && grant.CloseDate.After(now) {
		score += stillOpenScore
	}

	return min(maxRelevanceScore, score)
}

// Reasons derives the human-readable match explanations. They are computed
// independently of Score, not as a trace of which sub-scores fired.
func Reasons(grant models.GrantOpportunity, project models.ProjectDescription, now time.Time) []string {
	var reasons []string

	projectText := strings.ToLower(strings.Join([]string{
		project.ProjectName,
		project.Mission,
	}, " "))

	if strings.Contains(projectText, strings.ToLower(grant.Category)) {
		reasons = append(reasons, fmt.Sprintf("Matches %s category", grant.Category))
	}

	if grant.AwardCeiling != nil {
		reasons = append(reasons, fmt.Sprintf("Awards up to $%s", formatAmount(*grant.AwardCeiling)))
	}

	if grant.CloseDate != nil {
		days := int(math.Ceil(grant.CloseDate.Sub(now).Hours() / 24))
		if days > 0 {
			reasons = append(reasons, fmt.Sprintf("Deadline in %d days", days))
		}
	}

	if strings.Contains(strings.ToLower(grant.Eligibility), "nonprofit") {
		reasons = append(reasons, "Nonprofits eligible")
	}

	return reasons
}

// Rank scores every candidate, sorts by descending relevance, and returns
// at most limit results. Ties keep no particular order.
func Rank(grants []models.GrantOpportunity, project models.ProjectDescription, now time.Time, limit int) []models.MatchResult {
	results := make([]models.MatchResult, 0, len(grants))
	for _, grant := range grants {
		results = append(results, models.MatchResult{
			GrantOpportunity: grant,
			RelevanceScore:   Score(grant, project, now),
			MatchReasons:     Reasons(grant, project, now),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// budgetAmount pulls the first embedded positive integer out of a free-text
// budget field.
func budgetAmount(budget string) (int, bool) {
	m := leadingNumber.FindString(budget)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// formatAmount renders a dollar figure with thousands separators, dropping
// a trailing ".00" for whole amounts.
func formatAmount(v float64) string {
	whole := int64(v)
	s := strconv.FormatInt(whole, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	if frac := v - float64(whole); frac > 0 {
		out += strings.TrimPrefix(strconv.FormatFloat(frac, 'f', 2, 64), "0")
	}
	return out
}
