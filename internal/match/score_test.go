package match

import (
	"strings"
	"testing"
	"time"

	"github.com/david/grantwise/internal/models"
)

var scoreNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func floatPtr(v float64) *float64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestScore_Bounds(t *testing.T) {
	// Empty inputs still earn the category credit: the empty category is a
	// substring of every project text.
	if got := Score(models.GrantOpportunity{}, models.ProjectDescription{}, scoreNow); got != 20 {
		t.Fatalf("empty inputs should score 20, got %d", got)
	}

	deadline := scoreNow.Add(30 * 24 * time.Hour)
	grant := models.GrantOpportunity{
		Title:        "Community education health environment program funding support",
		Description:  "education health environment community program funding support grant award",
		Category:     "education",
		AwardCeiling: floatPtr(100000),
		CloseDate:    timePtr(deadline),
	}
	project := models.ProjectDescription{
		ProjectName: "education health environment community program funding support grant award",
		Mission:     "education health environment community program funding support grant award",
		Budget:      "50000",
	}
	if got := Score(grant, project, scoreNow); got != 100 {
		t.Fatalf("saturated inputs should score 100, got %d", got)
	}
}

func TestScore_KeywordCapAndRepeats(t *testing.T) {
	// Category "Health" never appears in the project text, so only the
	// keyword component contributes.
	grant := models.GrantOpportunity{Description: "literacy tutoring", Category: "Health"}

	// Four distinct overlapping words, 5 points each.
	project := models.ProjectDescription{Mission: "literacy tutoring literacy tutoring"}
	if got := Score(grant, project, scoreNow); got != 20 {
		t.Fatalf("expected 20 for four overlap hits, got %d", got)
	}

	// Enough repeats to blow past the cap.
	project.Mission = strings.Repeat("literacy ", 20)
	if got := Score(grant, project, scoreNow); got != 40 {
		t.Fatalf("keyword component should cap at 40, got %d", got)
	}
}

func TestScore_ShortWordsIgnored(t *testing.T) {
	grant := models.GrantOpportunity{Description: "with from that this", Category: "Health"}
	project := models.ProjectDescription{Mission: "with from that this"}
	if got := Score(grant, project, scoreNow); got != 0 {
		t.Fatalf("four-letter words should not count, got %d", got)
	}
}

func TestScore_Category(t *testing.T) {
	grant := models.GrantOpportunity{Category: "Education"}
	project := models.ProjectDescription{Mission: "Adult education outreach"}
	if got := Score(grant, project, scoreNow); got < 20 {
		t.Fatalf("expected category credit, got %d", got)
	}

	if got := Score(models.GrantOpportunity{Category: "Health"}, project, scoreNow); got != 0 {
		t.Fatalf("unmatched category must not score, got %d", got)
	}
}

func TestScore_EmptyCategoryStillEarnsCredit(t *testing.T) {
	// Detail enrichment often fails upstream and leaves the category blank.
	// The empty string substring-matches every project text, so such grants
	// keep the full category credit.
	grant := models.GrantOpportunity{Category: ""}
	project := models.ProjectDescription{Mission: "xx yz"}
	if got := Score(grant, project, scoreNow); got != 20 {
		t.Fatalf("empty category should earn 20, got %d", got)
	}
}

func TestScore_BudgetFit(t *testing.T) {
	tests := []struct {
		name     string
		ceiling  *float64
		budget   string
		expected int
	}{
		{"within ceiling", floatPtr(100000), "We request $50000 total", 20},
		{"over ceiling", floatPtr(40000), "50000", 0},
		{"no ceiling no credit", nil, "50000", 0},
		{"no number in budget", floatPtr(100000), "modest", 0},
		{"zero budget", floatPtr(100000), "0 dollars", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grant := models.GrantOpportunity{AwardCeiling: tt.ceiling, Category: "Health"}
			project := models.ProjectDescription{Budget: tt.budget}
			if got := Score(grant, project, scoreNow); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestScore_StillOpen(t *testing.T) {
	open := models.GrantOpportunity{CloseDate: timePtr(scoreNow.Add(24 * time.Hour)), Category: "Health"}
	if got := Score(open, models.ProjectDescription{}, scoreNow); got != 20 {
		t.Fatalf("open grant should earn 20, got %d", got)
	}

	closed := models.GrantOpportunity{CloseDate: timePtr(scoreNow.Add(-24 * time.Hour)), Category: "Health"}
	if got := Score(closed, models.ProjectDescription{}, scoreNow); got != 0 {
		t.Fatalf("closed grant should earn 0, got %d", got)
	}
}

func TestReasons(t *testing.T) {
	grant := models.GrantOpportunity{
		Category:     "Education",
		AwardCeiling: floatPtr(250000),
		CloseDate:    timePtr(scoreNow.Add(10*24*time.Hour + time.Hour)),
		Eligibility:  "Nonprofit organizations with 501(c)(3) status",
	}
	project := models.ProjectDescription{Mission: "Rural education access"}

	got := Reasons(grant, project, scoreNow)
	expected := []string{
		"Matches Education category",
		"Awards up to $250,000",
		"Deadline in 11 days",
		"Nonprofits eligible",
	}
	if len(got) != len(expected) {
		t.Fatalf("expected %d reasons, got %v", len(expected), got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("reason %d: expected %q, got %q", i, expected[i], got[i])
		}
	}
}

func TestReasons_PastDeadlineOmitted(t *testing.T) {
	grant := models.GrantOpportunity{Category: "Health", CloseDate: timePtr(scoreNow.Add(-time.Hour))}
	if got := Reasons(grant, models.ProjectDescription{}, scoreNow); len(got) != 0 {
		t.Fatalf("expected no reasons for an expired grant, got %v", got)
	}
}

func TestRank_OrderAndLimit(t *testing.T) {
	project := models.ProjectDescription{Mission: "education outreach", Budget: "10000"}
	grants := []models.GrantOpportunity{
		{ID: "low", Title: "General fund"},
		{ID: "high", Title: "education outreach", Category: "education", AwardCeiling: floatPtr(50000),
			CloseDate: timePtr(scoreNow.Add(48 * time.Hour))},
		{ID: "mid", Title: "education services"},
	}

	ranked := Rank(grants, project, scoreNow, 2)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 results, got %d", len(ranked))
	}
	if ranked[0].ID != "high" || ranked[1].ID != "mid" {
		t.Fatalf("unexpected order: %s, %s", ranked[0].ID, ranked[1].ID)
	}
	if ranked[0].RelevanceScore <= ranked[1].RelevanceScore {
		t.Fatalf("scores not descending: %d then %d", ranked[0].RelevanceScore, ranked[1].RelevanceScore)
	}
	if len(ranked[0].MatchReasons) == 0 {
		t.Fatalf("top match should carry reasons")
	}
}
