package ai

import (
	"fmt"
	"strings"

	"github.com/david/grantwise/internal/guidelines"
	"github.com/david/grantwise/internal/models"
)

const (
	proposalSystemPrompt = "You are an expert grant writer with 20+ years of experience helping nonprofits secure funding. You write compelling, persuasive proposals that follow funder guidelines precisely while showcasing the unique impact of each organization."
	voiceSystemPrompt    = "You are an expert in analyzing writing styles and organizational voice. Identify key characteristics, tone, vocabulary patterns, and unique phrases."
	refineSystemPrompt   = "You are an expert grant writer helping to refine and improve grant proposals."
)

// BuildProposalPrompt assembles the generation prompt from the project
// description and the requirements parsed out of its guidelines.
func BuildProposalPrompt(project models.ProjectDescription, parsed guidelines.Parsed) string {
	var b strings.Builder

	b.WriteString("Please write a compelling grant proposal based on the following information:\n\n")
	fmt.Fprintf(&b, "ORGANIZATION: %s\n\n", project.OrganizationName)
	fmt.Fprintf(&b, "PROJECT NAME: %s\n\n", project.ProjectName)
	fmt.Fprintf(&b, "MISSION: %s\n\n", project.Mission)
	fmt.Fprintf(&b, "PROBLEM STATEMENT: %s\n\n", project.Problem)
	fmt.Fprintf(&b, "PROPOSED ACTIVITIES: %s\n\n", project.Activities)
	fmt.Fprintf(&b, "TARGET POPULATION: %s\n\n", project.TargetPopulation)
	fmt.Fprintf(&b, "PROJECT DURATION: %s\n\n", project.Duration)
	fmt.Fprintf(&b, "EXPECTED OUTCOMES: %s\n\n", project.Outcomes)
	fmt.Fprintf(&b, "BUDGET: %s\n\n", project.Budget)
	fmt.Fprintf(&b, "SUCCESS METRICS: %s\n\n", project.Metrics)
	fmt.Fprintf(&b, "GRANT GUIDELINES:\n%s\n\n", project.Guidelines)

	if parsed.WordLimit != nil {
		fmt.Fprintf(&b, "IMPORTANT: The proposal must not exceed %d words.\n\n", *parsed.WordLimit)
	}
	if len(parsed.RequiredSections) > 0 {
		fmt.Fprintf(&b, "REQUIRED SECTIONS: %s\n\n", strings.Join(parsed.RequiredSections, ", "))
	}

	hasVoice := strings.TrimSpace(project.OrganizationVoice) != ""
	if hasVoice {
		fmt.Fprintf(&b, "ORGANIZATION VOICE SAMPLES (match this tone and style):\n%s\n\n", project.OrganizationVoice)
	}

	b.WriteString("Please create a professional grant proposal that:\n")
	b.WriteString("1. Follows the grant guidelines exactly\n")
	b.WriteString("2. Uses persuasive, compelling language\n")
	b.WriteString("3. Clearly demonstrates impact and need\n")
	b.WriteString("4. Includes all required sections from the guidelines\n")
	b.WriteString("5. Maintains a professional, confident tone\n")
	if parsed.WordLimit != nil {
		fmt.Fprintf(&b, "6. Stays within the %d word limit\n", *parsed.WordLimit)
	}
	if hasVoice {
		b.WriteString("7. Matches the organization's unique voice and writing style\n")
	}

	b.WriteString("\nFormat the proposal with clear headings and sections.")

	return b.String()
}

// BuildVoicePrompt asks for a style analysis of past proposals.
func BuildVoicePrompt(pastProposals string) string {
	return fmt.Sprintf("Analyze the writing style and voice in these past grant proposals:\n\n%s\n\nProvide a detailed analysis of:\n1. Tone (formal, conversational, passionate, etc.)\n2. Common vocabulary and phrases\n3. Sentence structure patterns\n4. Unique characteristics\n5. Key themes and values", pastProposals)
}

// BuildRefinePrompt wraps an existing proposal with a revision instruction.
func BuildRefinePrompt(proposal, instruction string) string {
	return fmt.Sprintf("Here is a grant proposal:\n\n%s\n\nPlease %s\n\nReturn the complete refined proposal.", proposal, instruction)
}
