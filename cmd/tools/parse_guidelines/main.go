// parse_guidelines extracts structured requirements from a guidelines
// document (text or PDF file, or a URL) and prints them as JSON. With
// -proposal it also runs a compliance check against the extracted rules.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/david/grantwise/internal/guidelines"
)

func main() {
	input := flag.String("in", "", "guidelines file (.txt or .pdf) or http(s) URL")
	proposalFile := flag.String("proposal", "", "optional proposal text file to check for compliance")
	flag.Parse()

	if *input == "" {
		log.Fatal("usage: parse_guidelines -in guidelines.pdf [-proposal draft.txt]")
	}

	parsed, err := loadGuidelines(*input)
	if err != nil {
		log.Fatalf("Failed to parse guidelines: %v", err)
	}

	result := map[string]interface{}{"guidelines": parsed}

	if *proposalFile != "" {
		proposal, err := os.ReadFile(*proposalFile)
		if err != nil {
			log.Fatalf("Failed to read proposal: %v", err)
		}
		result["compliance"] = guidelines.CheckCompliance(string(proposal), parsed)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	fmt.Println(string(out))
}

func loadGuidelines(input string) (guidelines.Parsed, error) {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return guidelines.NewFetcher().FetchAndParse(input)
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return guidelines.Parsed{}, err
	}
	if strings.HasSuffix(strings.ToLower(input), ".pdf") {
		return guidelines.ParsePDF(data)
	}
	return guidelines.Parse(string(data)), nil
}
