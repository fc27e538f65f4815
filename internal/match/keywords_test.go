package match

import (
	"reflect"
	"testing"

	"github.com/david/grantwise/internal/models"
)

func TestExtractKeywords_Families(t *testing.T) {
	tests := []struct {
		name     string
		project  models.ProjectDescription
		expected []string
	}{
		{
			name: "education and youth",
			project: models.ProjectDescription{
				ProjectName: "After-School STEM Lab",
				Mission:     "Improve literacy for children in our district",
			},
			expected: []string{"education", "youth"},
		},
		{
			name: "health",
			project: models.ProjectDescription{
				Problem: "Rural patients lack access to mental health treatment",
			},
			expected: []string{"health"},
		},
		{
			name: "environment and community",
			project: models.ProjectDescription{
				Activities: "Neighborhood clean-energy conservation workshops",
			},
			expected: []string{"environment", "community development"},
		},
		{
			name: "arts",
			project: models.ProjectDescription{
				Mission: "A museum residency for emerging creative voices",
			},
			expected: []string{"arts"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.project)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestExtractKeywords_FallbackNeverEmpty(t *testing.T) {
	got := ExtractKeywords(models.ProjectDescription{
		ProjectName: "Untitled",
		Mission:     "General operating support",
	})
	if !reflect.DeepEqual(got, []string{"nonprofit", "community"}) {
		t.Fatalf("expected fallback pair, got %v", got)
	}
}

func TestDetermineCategory_PriorityOrder(t *testing.T) {
	tests := []struct {
		name     string
		project  models.ProjectDescription
		expected string
	}{
		{"education", models.ProjectDescription{Mission: "Tutoring for every student"}, "ED"},
		{"health", models.ProjectDescription{Problem: "Untreated medical conditions"}, "HL"},
		{"environment", models.ProjectDescription{Mission: "Watershed conservation"}, "EN"},
		{"housing", models.ProjectDescription{Problem: "Affordable housing shortage"}, "CD"},
		{"arts", models.ProjectDescription{ProjectName: "Humanities festival"}, "AH"},
		{"science", models.ProjectDescription{Mission: "Open research technology"}, "ST"},
		{"none", models.ProjectDescription{Mission: "General operating support"}, ""},
		// A project matching multiple rules takes the first rule's code.
		{"education beats science", models.ProjectDescription{
			Mission: "Research on how every student learns in school",
		}, "ED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineCategory(tt.project); got != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestDetermineCategory_IgnoresActivities(t *testing.T) {
	// Category derivation reads name, mission, and problem only.
	project := models.ProjectDescription{Activities: "school tutoring"}
	if got := DetermineCategory(project); got != "" {
		t.Fatalf("expected empty category, got %q", got)
	}
}
