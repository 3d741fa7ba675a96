package extract

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// PlaintextNormaliser handles plain text content and acts as the fallback
// for anything that looks like text.
type PlaintextNormaliser struct{}

func (n *PlaintextNormaliser) Normalise(content []byte, contentType string) (string, string) {
	if !utf8.Valid(content) {
		return "", "content is not valid UTF-8 text"
	}
	text := string(content)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text), ""
}

func (n *PlaintextNormaliser) SupportedTypes() []string {
	return []string{"text/plain", "text/*", "application/json"}
}

func (n *PlaintextNormaliser) Priority() int {
	return 1 // Lowest priority - fallback
}

// HTMLNormaliser extracts readable text from HTML content.
type HTMLNormaliser struct{}

func (n *HTMLNormaliser) Normalise(content []byte, contentType string) (string, string) {
	if !utf8.Valid(content) {
		return "", "content is not valid UTF-8 text"
	}
	text := string(content)

	text = removeHTMLBlocks(text, "script")
	text = removeHTMLBlocks(text, "style")
	text = stripHTMLTags(text)
	text = decodeHTMLEntities(text)

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	// Collapse runs of spaces left behind by stripped tags
	for strings.Contains(text, "  ") {
		text = strings.ReplaceAll(text, "  ", " ")
	}
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(text), ""
}

func (n *HTMLNormaliser) SupportedTypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

func (n *HTMLNormaliser) Priority() int {
	return 50
}

// CSVNormaliser passes tabular text through with line-ending cleanup, kept
// separate from plaintext so it outranks the text/* fallback.
type CSVNormaliser struct{}

func (n *CSVNormaliser) Normalise(content []byte, contentType string) (string, string) {
	if !utf8.Valid(content) {
		return "", "content is not valid UTF-8 text"
	}
	text := string(content)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text), ""
}

func (n *CSVNormaliser) SupportedTypes() []string {
	return []string{"text/csv", "text/tab-separated-values"}
}

func (n *CSVNormaliser) Priority() int {
	return 50
}

// sniffContentType guesses a MIME type from the filename extension, falling
// back to a text check on the bytes themselves.
func sniffContentType(filename string, content []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html", ".htm":
		return "text/html"
	case ".csv":
		return "text/csv"
	case ".tsv":
		return "text/tab-separated-values"
	case ".json":
		return "application/json"
	case ".txt", ".md", ".log":
		return "text/plain"
	}
	if utf8.Valid(content) {
		return "text/plain"
	}
	return "application/octet-stream"
}

func removeHTMLBlocks(content, tagName string) string {
	result := content

	for {
		startTag := "<" + strings.ToLower(tagName)
		endTag := "</" + strings.ToLower(tagName) + ">"

		startIdx := strings.Index(strings.ToLower(result), startTag)
		if startIdx == -1 {
			break
		}

		endIdx := strings.Index(strings.ToLower(result[startIdx:]), endTag)
		if endIdx == -1 {
			break
		}

		result = result[:startIdx] + result[startIdx+endIdx+len(endTag):]
	}

	return result
}

func stripHTMLTags(content string) string {
	var result strings.Builder
	inTag := false

	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			result.WriteRune(' ') // Replace tag with space
		case !inTag:
			result.WriteRune(r)
		}
	}

	return result.String()
}

func decodeHTMLEntities(content string) string {
	replacements := map[string]string{
		"&nbsp;":   " ",
		"&amp;":    "&",
		"&lt;":     "<",
		"&gt;":     ">",
		"&quot;":   "\"",
		"&apos;":   "'",
		"&#39;":    "'",
		"&mdash;":  "—",
		"&ndash;":  "–",
		"&hellip;": "...",
	}

	for entity, replacement := range replacements {
		content = strings.ReplaceAll(content, entity, replacement)
	}

	return content
}
