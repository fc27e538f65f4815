package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectDescription is the applicant-supplied project record. All fields are
// free text; Budget may embed a numeric figure ("$25,000 for year one").
type ProjectDescription struct {
	OrganizationName  string `json:"organization_name"`
	ProjectName       string `json:"project_name"`
	Mission           string `json:"mission"`
	Problem           string `json:"problem"`
	Activities        string `json:"activities"`
	TargetPopulation  string `json:"target_population"`
	Duration          string `json:"duration"`
	Outcomes          string `json:"outcomes"`
	Budget            string `json:"budget"`
	Metrics           string `json:"metrics"`
	Guidelines        string `json:"guidelines"`
	OrganizationVoice string `json:"organization_voice"`
}

// GrantOpportunity is a funding opportunity as returned by the grants search
// collaborator. AwardCeiling and CloseDate are nil when the source omits them.
type GrantOpportunity struct {
	ID               string     `json:"id"`
	Number           string     `json:"number"`
	Title            string     `json:"title"`
	Agency           string     `json:"agency"`
	Category         string     `json:"category"`
	Description      string     `json:"description"`
	OpenDate         *time.Time `json:"open_date"`
	CloseDate        *time.Time `json:"close_date"`
	CloseDateRaw     string     `json:"close_date_raw"`
	EstimatedFunding string     `json:"estimated_funding"`
	AwardCeiling     *float64   `json:"award_ceiling"`
	AwardFloor       *float64   `json:"award_floor"`
	Eligibility      string     `json:"eligibility"`
	URL              string     `json:"url"`
}

// MatchResult is a GrantOpportunity augmented with its relevance to a project.
type MatchResult struct {
	GrantOpportunity
	RelevanceScore int      `json:"relevance_score"`
	MatchReasons   []string `json:"match_reasons"`
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Plan         string    `json:"plan"`
	CreatedAt    time.Time `json:"created_at"`
}

// Proposal is a generated draft together with the analysis that produced it.
type Proposal struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	OrganizationName string     `json:"organization_name"`
	ProjectName      string     `json:"project_name"`
	Content          string     `json:"content"`
	ParsedGuidelines []byte     `json:"-"` // JSON snapshot of the parsed guidelines
	Compliance       []byte     `json:"-"` // JSON snapshot of the compliance report
	TokensUsed       int        `json:"tokens_used"`
	Model            string     `json:"model"`
	Embedding        []float32  `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}
