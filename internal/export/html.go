package export

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// HTMLFile renders the proposal as a standalone HTML document with one
// heading per parsed section. Print stylesheets make this the path to a
// paper copy as well.
func HTMLFile(proposal string, meta Metadata, now time.Time) File {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(meta.ProjectName))
	b.WriteString("<style>body{font-family:Georgia,serif;max-width:48rem;margin:2rem auto;line-height:1.5}h1,h2{font-family:Helvetica,Arial,sans-serif}header{text-align:center;margin-bottom:3rem}</style>\n")
	b.WriteString("</head>\n<body>\n<header>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(meta.ProjectName))
	fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(meta.OrganizationName))
	fmt.Fprintf(&b, "<p>Generated: %s</p>\n", now.Format("1/2/2006"))
	b.WriteString("</header>\n")

	for _, section := range ParseSections(proposal) {
		if section.Heading != "" {
			fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(section.Heading))
		}
		for _, para := range strings.Split(section.Content, "\n\n") {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(para))
		}
	}

	b.WriteString("</body>\n</html>\n")

	return File{
		Content:  []byte(b.String()),
		Filename: exportFilename(meta.ProjectName, "html"),
		MIMEType: "text/html",
	}
}
