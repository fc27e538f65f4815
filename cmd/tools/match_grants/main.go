// match_grants searches Grants.gov for opportunities relevant to a project
// description given as a JSON file and prints the ranked matches.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/david/grantwise/internal/grants"
	"github.com/david/grantwise/internal/match"
	"github.com/david/grantwise/internal/models"
)

func main() {
	projectFile := flag.String("project", "", "path to a project description JSON file")
	asJSON := flag.Bool("json", false, "print raw JSON instead of a table")
	flag.Parse()

	if *projectFile == "" {
		log.Fatal("usage: match_grants -project project.json")
	}

	data, err := os.ReadFile(*projectFile)
	if err != nil {
		log.Fatalf("Failed to read project file: %v", err)
	}

	var project models.ProjectDescription
	if err := json.Unmarshal(data, &project); err != nil {
		log.Fatalf("Failed to parse project file: %v", err)
	}

	log.Printf("Keywords: %s", strings.Join(match.ExtractKeywords(project), ", "))
	if category := match.DetermineCategory(project); category != "" {
		log.Printf("Category: %s", category)
	}

	matcher := grants.NewMatcher(grants.NewClient())
	results, err := matcher.FindMatching(context.Background(), project)
	if err != nil {
		log.Fatalf("Matching failed: %v", err)
	}

	if *asJSON {
		out, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(out))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Score", "Title", "Agency", "Closes", "Ceiling", "Reasons"})

	for _, r := range results {
		closes := "-"
		if r.CloseDate != nil {
			closes = r.CloseDate.Format("2006-01-02")
		}
		ceiling := "-"
		if r.AwardCeiling != nil {
			ceiling = fmt.Sprintf("$%.0f", *r.AwardCeiling)
		}
		t.AppendRow(table.Row{
			r.RelevanceScore,
			grants.TruncateText(r.Title, 48),
			grants.TruncateText(r.Agency, 28),
			closes,
			ceiling,
			strings.Join(r.MatchReasons, "; "),
		})
	}
	t.Render()
}
