package server

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"

	"github.com/jonathan/coverletter-agent/internal/types"
)

const coverLetterPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Cover Letter</title>
</head>
<body>
<article class="cover-letter">
%s</article>
<aside class="summary">
<pre>%s</pre>
</aside>
</body>
</html>
`

// RenderCoverLetterHTML converts the Markdown cover letter to a standalone HTML page.
// Raw HTML inside the Markdown is not passed through.
func RenderCoverLetterHTML(content *types.GeneratedContent) ([]byte, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(content.CoverLetter), &body); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return []byte(fmt.Sprintf(coverLetterPage, body.String(), html.EscapeString(content.Summary))), nil
}
