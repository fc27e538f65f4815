package grants

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/david/grantwise/internal/match"
	"github.com/david/grantwise/internal/models"
)

const (
	// Eligibility code 25 ("Others") casts the widest net for nonprofits.
	nonprofitEligibility = "25"

	matchSearchRows = 50
	matchTopResults = 10
)

// Searcher is the slice of Client the matcher needs.
type Searcher interface {
	Search(ctx context.Context, criteria SearchCriteria) ([]models.GrantOpportunity, int, error)
}

// Matcher finds and ranks federal grants for a project description.
type Matcher struct {
	Search Searcher
	Now    func() time.Time
}

func NewMatcher(client *Client) *Matcher {
	return &Matcher{
		Search: client,
		Now:    time.Now,
	}
}

// FindMatching derives search terms from the project, queries Grants.gov,
// and returns the highest-scoring opportunities.
func (m *Matcher) FindMatching(ctx context.Context, project models.ProjectDescription) ([]models.MatchResult, error) {
	keywords := match.ExtractKeywords(project)
	category := match.DetermineCategory(project)

	log.Printf("[Matcher] Searching keywords=%v category=%q", keywords, category)

	grants, _, err := m.Search.Search(ctx, SearchCriteria{
		Keyword:           strings.Join(keywords, " "),
		OppStatuses:       "forecasted|posted",
		Eligibilities:     nonprofitEligibility,
		FundingCategories: category,
		SortBy:            "openDate|desc",
		Rows:              matchSearchRows,
	})
	if err != nil {
		return nil, fmt.Errorf("searching grants: %w", err)
	}

	return match.Rank(grants, project, m.Now(), matchTopResults), nil
}
