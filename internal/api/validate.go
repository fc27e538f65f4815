package api

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/david/grantwise/internal/models"
)

// Field length limits for proposal generation input.
const (
	minOrganizationNameLength = 2
	maxOrganizationNameLength = 200
	minProjectNameLength      = 3
	maxProjectNameLength      = 200
	minMissionLength          = 50
	maxMissionLength          = 2000
	minGuidelinesLength       = 100
	maxGuidelinesLength       = 10000
	maxVoiceSampleLength      = 10000
	minPasswordLength         = 8
)

var (
	emailPattern     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	lowercasePattern = regexp.MustCompile(`[a-z]`)
	uppercasePattern = regexp.MustCompile(`[A-Z]`)
	digitPattern     = regexp.MustCompile(`\d`)
)

type fieldRule struct {
	name  string
	value string
	min   int
	max   int
}

func checkLengths(rules []fieldRule) []string {
	var errs []string
	for _, r := range rules {
		n := len(strings.TrimSpace(r.value))
		switch {
		case n == 0 && r.min > 0:
			errs = append(errs, fmt.Sprintf("%s is required", r.name))
		case n < r.min || (r.max > 0 && n > r.max):
			errs = append(errs, fmt.Sprintf("%s must be between %d and %d characters", r.name, r.min, r.max))
		}
	}
	return errs
}

// validateProject checks every field of a generation request. An empty
// return slice means the request is acceptable.
func validateProject(p models.ProjectDescription) []string {
	errs := checkLengths([]fieldRule{
		{"Organization name", p.OrganizationName, minOrganizationNameLength, maxOrganizationNameLength},
		{"Project name", p.ProjectName, minProjectNameLength, maxProjectNameLength},
		{"Mission statement", p.Mission, minMissionLength, maxMissionLength},
		{"Problem description", p.Problem, 50, 2000},
		{"Activities description", p.Activities, 50, 2000},
		{"Target population", p.TargetPopulation, 10, 500},
		{"Duration", p.Duration, 3, 100},
		{"Outcomes", p.Outcomes, 50, 1000},
		{"Budget", p.Budget, 10, 1000},
		{"Metrics", p.Metrics, 20, 1000},
		{"Guidelines", p.Guidelines, minGuidelinesLength, maxGuidelinesLength},
	})

	// Voice samples are optional but capped.
	if len(strings.TrimSpace(p.OrganizationVoice)) > maxVoiceSampleLength {
		errs = append(errs, fmt.Sprintf("Organization voice samples must be less than %d characters", maxVoiceSampleLength))
	}

	return errs
}

func validateGuidelinesText(text string) []string {
	return checkLengths([]fieldRule{
		{"Guidelines", text, minGuidelinesLength, maxGuidelinesLength},
	})
}

func validateEmail(email string) []string {
	email = strings.TrimSpace(email)
	if email == "" {
		return []string{"Email is required"}
	}
	if !emailPattern.MatchString(email) {
		return []string{"Please provide a valid email address"}
	}
	return nil
}

func validatePassword(password string) []string {
	if password == "" {
		return []string{"Password is required"}
	}
	var errs []string
	if len(password) < minPasswordLength {
		errs = append(errs, fmt.Sprintf("Password must be at least %d characters long", minPasswordLength))
	}
	if !lowercasePattern.MatchString(password) || !uppercasePattern.MatchString(password) || !digitPattern.MatchString(password) {
		errs = append(errs, "Password must contain at least one uppercase letter, one lowercase letter, and one number")
	}
	return errs
}
