package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/david/grantwise/internal/models"
)

func sampleProject() models.ProjectDescription {
	return models.ProjectDescription{
		OrganizationName: "River Valley Literacy Council",
		ProjectName:      "Adult Reading Partners",
		Mission:          "Every adult in our county can read.",
		Problem:          "One in five adults reads below a sixth-grade level.",
		Activities:       "Weekly tutoring and book distribution.",
		Budget:           "$45,000",
		Guidelines:       "Proposals must not exceed 1000 words. Required sections: Executive Summary, Budget, Impact.",
	}
}

func TestGenerateProposal_ParsesGuidelines(t *testing.T) {
	gen, err := NewGenerator(&fakeCompleter{}).GenerateProposal(context.Background(), sampleProject())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.ParsedGuidelines.WordLimit == nil || *gen.ParsedGuidelines.WordLimit != 1000 {
		t.Fatalf("guidelines not parsed into result: %+v", gen.ParsedGuidelines)
	}
}

type fakeCompleter struct {
	lastSystem string
	lastUser   string
}

func (f *fakeCompleter) ChatCompletion(ctx context.Context, system, user string, maxTokens int, temperature float64) (*Completion, error) {
	f.lastSystem = system
	f.lastUser = user
	return &Completion{Content: "GENERATED", TokensUsed: 1234, Model: "test-model"}, nil
}

func TestGenerateProposal_PromptContents(t *testing.T) {
	fake := &fakeCompleter{}
	gen, err := NewGenerator(fake).GenerateProposal(context.Background(), sampleProject())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gen.Proposal != "GENERATED" || gen.TokensUsed != 1234 || gen.Model != "test-model" {
		t.Fatalf("completion metadata lost: %+v", gen)
	}

	for _, want := range []string{
		"ORGANIZATION: River Valley Literacy Council",
		"PROJECT NAME: Adult Reading Partners",
		"IMPORTANT: The proposal must not exceed 1000 words.",
		"REQUIRED SECTIONS: Executive Summary, Budget, Impact",
		"6. Stays within the 1000 word limit",
	} {
		if !strings.Contains(fake.lastUser, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}

	if strings.Contains(fake.lastUser, "ORGANIZATION VOICE SAMPLES") {
		t.Fatal("voice section should be omitted when no samples provided")
	}
	if strings.Contains(fake.lastUser, "7. Matches") {
		t.Fatal("voice rule should be omitted when no samples provided")
	}
	if !strings.Contains(fake.lastSystem, "expert grant writer") {
		t.Fatalf("unexpected system prompt %q", fake.lastSystem)
	}
}

func TestGenerateProposal_WithVoice(t *testing.T) {
	project := sampleProject()
	project.OrganizationVoice = "We believe every neighbor deserves the dignity of literacy."

	fake := &fakeCompleter{}
	if _, err := NewGenerator(fake).GenerateProposal(context.Background(), project); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(fake.lastUser, "ORGANIZATION VOICE SAMPLES (match this tone and style):") {
		t.Fatal("expected voice samples in prompt")
	}
	if !strings.Contains(fake.lastUser, "7. Matches the organization's unique voice and writing style") {
		t.Fatal("expected voice rule in prompt")
	}
}

func TestRefine(t *testing.T) {
	fake := &fakeCompleter{}
	out, err := NewGenerator(fake).Refine(context.Background(), "Our draft.", "make it more concise")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "GENERATED" {
		t.Fatalf("unexpected output %q", out)
	}
	if !strings.Contains(fake.lastUser, "Here is a grant proposal:\n\nOur draft.") {
		t.Fatalf("refine prompt malformed: %q", fake.lastUser)
	}
	if !strings.Contains(fake.lastUser, "Please make it more concise") {
		t.Fatalf("instruction missing: %q", fake.lastUser)
	}
}

func TestAnalyzeVoice(t *testing.T) {
	fake := &fakeCompleter{}
	analysis, err := NewGenerator(fake).AnalyzeVoice(context.Background(), "Past proposal text.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.Analysis != "GENERATED" || analysis.RawSamples != "Past proposal text." {
		t.Fatalf("unexpected analysis: %+v", analysis)
	}
	if !strings.Contains(fake.lastSystem, "writing styles") {
		t.Fatalf("unexpected system prompt %q", fake.lastSystem)
	}
}
