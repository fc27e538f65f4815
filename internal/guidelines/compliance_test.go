package guidelines

import (
	"strings"
	"testing"
)

func intPtr(n int) *int { return &n }

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestCheckCompliance_OverWordLimit(t *testing.T) {
	report := CheckCompliance(words(600), Parsed{WordLimit: intPtr(500)})

	if report.Compliant {
		t.Fatal("expected non-compliant")
	}
	if len(report.Issues) != 1 {
		t.Fatalf("expected one issue, got %v", report.Issues)
	}
	if !strings.Contains(report.Issues[0], "600") || !strings.Contains(report.Issues[0], "500") {
		t.Fatalf("issue should name both counts: %s", report.Issues[0])
	}
	if report.Stats.WordCount != 600 {
		t.Fatalf("expected word count 600, got %d", report.Stats.WordCount)
	}
}

func TestCheckCompliance_NearWordLimitWarns(t *testing.T) {
	// 480 > 0.95 * 500 = 475: warning only, still compliant.
	report := CheckCompliance(words(480), Parsed{WordLimit: intPtr(500)})

	if !report.Compliant {
		t.Fatalf("expected compliant, issues: %v", report.Issues)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %v", report.Warnings)
	}
	if len(report.Issues) != 0 {
		t.Fatalf("expected no issues, got %v", report.Issues)
	}
}

func TestCheckCompliance_UnderWarningBandIsClean(t *testing.T) {
	report := CheckCompliance(words(400), Parsed{WordLimit: intPtr(500)})
	if !report.Compliant || len(report.Warnings) != 0 {
		t.Fatalf("expected clean report, got %+v", report)
	}
}

func TestCheckCompliance_CharacterLimit(t *testing.T) {
	report := CheckCompliance(strings.Repeat("a", 101), Parsed{CharacterLimit: intPtr(100)})

	if report.Compliant {
		t.Fatal("expected non-compliant")
	}
	if len(report.Issues) != 1 || !strings.Contains(report.Issues[0], "character") {
		t.Fatalf("expected character issue, got %v", report.Issues)
	}
	// No near-limit warning band exists for characters.
	atLimit := CheckCompliance(strings.Repeat("a", 100), Parsed{CharacterLimit: intPtr(100)})
	if !atLimit.Compliant || len(atLimit.Warnings) != 0 {
		t.Fatalf("expected clean report at limit, got %+v", atLimit)
	}
}

func TestCheckCompliance_MissingSectionsAggregated(t *testing.T) {
	parsed := Parsed{RequiredSections: []string{"Executive Summary", "Budget", "Timeline"}}
	proposal := "EXECUTIVE SUMMARY\nWe seek funding for our program."

	report := CheckCompliance(proposal, parsed)
	if report.Compliant {
		t.Fatal("expected non-compliant")
	}
	if len(report.Issues) != 1 {
		t.Fatalf("expected single aggregate issue, got %v", report.Issues)
	}
	if !strings.Contains(report.Issues[0], "Budget") || !strings.Contains(report.Issues[0], "Timeline") {
		t.Fatalf("aggregate issue should list all missing sections: %s", report.Issues[0])
	}

	if report.Stats.SectionsRequired != 3 {
		t.Fatalf("expected 3 required, got %d", report.Stats.SectionsRequired)
	}
	if report.Stats.SectionsFound != 1 {
		t.Fatalf("expected 1 found, got %d", report.Stats.SectionsFound)
	}
}

func TestCheckCompliance_SectionMatchIsCaseInsensitive(t *testing.T) {
	parsed := Parsed{RequiredSections: []string{"budget"}}
	report := CheckCompliance("Our BUDGET is attached.", parsed)
	if !report.Compliant {
		t.Fatalf("expected compliant, got issues %v", report.Issues)
	}
	if report.Stats.SectionsFound != 1 {
		t.Fatalf("expected section found, got %d", report.Stats.SectionsFound)
	}
}

func TestCheckCompliance_NoGuidelinesIsCompliant(t *testing.T) {
	report := CheckCompliance("Anything at all.", Parsed{})
	if !report.Compliant || len(report.Issues) != 0 || len(report.Warnings) != 0 {
		t.Fatalf("expected trivially compliant report, got %+v", report)
	}
}

func TestCheckCompliance_EmptyProposal(t *testing.T) {
	parsed := Parsed{WordLimit: intPtr(100), RequiredSections: []string{"budget"}}
	report := CheckCompliance("", parsed)
	if report.Compliant {
		t.Fatal("expected non-compliant: required section missing")
	}
	if report.Stats.WordCount != 0 || report.Stats.CharacterCount != 0 {
		t.Fatalf("expected zero counts, got %+v", report.Stats)
	}
}

func TestCheckCompliance_StatsInvariant(t *testing.T) {
	tests := []struct {
		name     string
		sections []string
		proposal string
	}{
		{"all present", []string{"budget", "timeline"}, "budget timeline"},
		{"some missing", []string{"budget", "timeline", "impact"}, "budget"},
		{"all missing", []string{"budget"}, "nothing relevant"},
		{"none required", nil, "anything"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := CheckCompliance(tt.proposal, Parsed{RequiredSections: tt.sections})
			missing := report.Stats.SectionsRequired - report.Stats.SectionsFound
			if report.Stats.SectionsFound+missing != report.Stats.SectionsRequired {
				t.Fatalf("stats invariant broken: %+v", report.Stats)
			}
			if report.Compliant != (len(report.Issues) == 0) {
				t.Fatalf("compliant flag out of sync: %+v", report)
			}
		})
	}
}
