package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Metadata names the proposal being exported.
type Metadata struct {
	OrganizationName string
	ProjectName      string
}

// File is a rendered export ready to be served for download.
type File struct {
	Content  []byte
	Filename string
	MIMEType string
}

var filenameSpaces = regexp.MustCompile(`\s+`)

// TextFile renders the proposal as plain text with a title header.
func TextFile(proposal string, meta Metadata, now time.Time) File {
	header := fmt.Sprintf("\n%s\n%s\nGenerated: %s\n\n%s\n\n",
		meta.OrganizationName,
		meta.ProjectName,
		now.Format("1/2/2006"),
		strings.Repeat("=", 60),
	)

	return File{
		Content:  []byte(header + proposal),
		Filename: exportFilename(meta.ProjectName, "txt"),
		MIMEType: "text/plain",
	}
}

func exportFilename(projectName, ext string) string {
	return filenameSpaces.ReplaceAllString(projectName, "_") + "_proposal." + ext
}
