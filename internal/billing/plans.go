// Package billing defines the subscription plans and the monthly proposal
// quota they grant.
package billing

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config/plans.yaml
var plansYAML []byte

// DefaultPlan is the plan assigned to new accounts.
const DefaultPlan = "Starter"

// Unlimited marks a quota with no cap.
const Unlimited = -1

// Plan is one subscription tier.
type Plan struct {
	Name              string `yaml:"name" json:"name"`
	Price             int    `yaml:"price" json:"price"`
	Currency          string `yaml:"currency" json:"currency"`
	Interval          string `yaml:"interval" json:"interval"`
	ProposalsPerMonth int    `yaml:"proposals_per_month" json:"proposalsPerMonth"`
	OrganizationVoice bool   `yaml:"organization_voice" json:"organizationVoice"`
	ComplianceChecker bool   `yaml:"compliance_checker" json:"complianceChecker"`
	PrioritySupport   bool   `yaml:"priority_support" json:"prioritySupport"`
	TeamCollaboration bool   `yaml:"team_collaboration" json:"teamCollaboration"`
	TeamMembers       int    `yaml:"team_members" json:"teamMembers,omitempty"`
	BatchGeneration   bool   `yaml:"batch_generation" json:"batchGeneration"`
}

type planRegistry struct {
	Plans []Plan `yaml:"plans"`
}

func loadPlans() ([]Plan, error) {
	var reg planRegistry
	if err := yaml.Unmarshal(plansYAML, &reg); err != nil {
		return nil, fmt.Errorf("parsing plans registry: %w", err)
	}
	if len(reg.Plans) == 0 {
		return nil, fmt.Errorf("plans registry is empty")
	}
	return reg.Plans, nil
}

var plans = func() []Plan {
	p, err := loadPlans()
	if err != nil {
		// The registry is embedded, failure here is a build defect.
		panic(err)
	}
	return p
}()

// Plans returns every tier in registry order.
func Plans() []Plan {
	return append([]Plan(nil), plans...)
}

// PlanByName looks up a tier case-insensitively.
func PlanByName(name string) (Plan, bool) {
	for _, p := range plans {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Plan{}, false
}

// QuotaExceeded reports whether a user on the named plan has used up their
// monthly proposal allowance. Unknown plans fall back to the default plan's
// quota.
func QuotaExceeded(planName string, usedThisMonth int) bool {
	plan, ok := PlanByName(planName)
	if !ok {
		plan, _ = PlanByName(DefaultPlan)
	}
	if plan.ProposalsPerMonth == Unlimited {
		return false
	}
	return usedThisMonth >= plan.ProposalsPerMonth
}
