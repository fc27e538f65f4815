package ai

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/david/grantwise/internal/guidelines"
	"github.com/david/grantwise/internal/models"
)

const (
	generateMaxTokens   = 4000
	generateTemperature = 0.7
	voiceMaxTokens      = 1000
	voiceTemperature    = 0.5
)

// Completer is the slice of Client the generator needs.
type Completer interface {
	ChatCompletion(ctx context.Context, system, user string, maxTokens int, temperature float64) (*Completion, error)
}

// Generator produces, refines, and voice-matches grant proposals.
type Generator struct {
	Client Completer
}

func NewGenerator(client Completer) *Generator {
	return &Generator{Client: client}
}

// GeneratedProposal is the output of one generation run.
type GeneratedProposal struct {
	Proposal         string            `json:"proposal"`
	ParsedGuidelines guidelines.Parsed `json:"parsedGuidelines"`
	TokensUsed       int               `json:"tokensUsed"`
	Model            string            `json:"model"`
	GeneratedAt      time.Time         `json:"generatedAt"`
}

// GenerateProposal parses the project's guidelines, builds the prompt, and
// runs the completion.
func (g *Generator) GenerateProposal(ctx context.Context, project models.ProjectDescription) (*GeneratedProposal, error) {
	parsed := guidelines.Parse(project.Guidelines)
	prompt := BuildProposalPrompt(project, parsed)

	log.Printf("[Generator] Generating proposal project=%q wordLimit=%v", project.ProjectName, parsed.WordLimit)

	completion, err := g.Client.ChatCompletion(ctx, proposalSystemPrompt, prompt, generateMaxTokens, generateTemperature)
	if err != nil {
		return nil, fmt.Errorf("generating proposal: %w", err)
	}

	log.Printf("[Generator] Proposal generated project=%q tokens=%d", project.ProjectName, completion.TokensUsed)

	return &GeneratedProposal{
		Proposal:         completion.Content,
		ParsedGuidelines: parsed,
		TokensUsed:       completion.TokensUsed,
		Model:            completion.Model,
		GeneratedAt:      completion.GeneratedAt,
	}, nil
}

// VoiceAnalysis describes an organization's writing style.
type VoiceAnalysis struct {
	Analysis   string `json:"analysis"`
	RawSamples string `json:"rawSamples"`
}

// AnalyzeVoice characterizes the tone and style of past proposals.
func (g *Generator) AnalyzeVoice(ctx context.Context, pastProposals string) (*VoiceAnalysis, error) {
	completion, err := g.Client.ChatCompletion(ctx, voiceSystemPrompt, BuildVoicePrompt(pastProposals), voiceMaxTokens, voiceTemperature)
	if err != nil {
		return nil, fmt.Errorf("analyzing voice: %w", err)
	}

	return &VoiceAnalysis{
		Analysis:   completion.Content,
		RawSamples: pastProposals,
	}, nil
}

// Refine rewrites an existing proposal following a user instruction.
func (g *Generator) Refine(ctx context.Context, proposal, instruction string) (string, error) {
	log.Printf("[Generator] Refining proposal instruction=%q", instruction)

	completion, err := g.Client.ChatCompletion(ctx, refineSystemPrompt, BuildRefinePrompt(proposal, instruction), generateMaxTokens, generateTemperature)
	if err != nil {
		return "", fmt.Errorf("refining proposal: %w", err)
	}
	return completion.Content, nil
}
