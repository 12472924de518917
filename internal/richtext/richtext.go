// Package richtext converts between the editor's HTML section content and plain text.
package richtext

import (
	"bytes"
	"html"
	"io"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	xhtml "golang.org/x/net/html"
)

// block elements that end a line of plain text.
var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "blockquote": true, "pre": true, "tr": true,
}

// ToPlain strips markup, turning block boundaries and <br> into newlines.
func ToPlain(content string) string {
	if !LooksLikeHTML(content) {
		return content
	}

	var b strings.Builder
	z := xhtml.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			if z.Err() != io.EOF {
				return content
			}
			return strings.TrimRight(b.String(), "\n")
		case xhtml.TextToken:
			b.WriteString(strings.ReplaceAll(string(z.Text()), "\u00a0", " "))
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			name, _ := z.TagName()
			if string(name) == "br" {
				b.WriteByte('\n')
			}
		case xhtml.EndTagToken:
			name, _ := z.TagName()
			if blockTags[string(name)] && b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteByte('\n')
			}
		}
	}
}

// FromPlain wraps plain text in paragraphs. Blank lines separate paragraphs and
// single newlines become <br>. Content that is already HTML is returned unchanged.
func FromPlain(text string) string {
	if LooksLikeHTML(text) {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var b strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.Trim(para, "\n")
		if strings.TrimSpace(para) == "" {
			continue
		}
		lines := strings.Split(para, "\n")
		for i, line := range lines {
			lines[i] = html.EscapeString(line)
		}
		b.WriteString("<p>")
		b.WriteString(strings.Join(lines, "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}

// LooksLikeHTML reports whether content starts with a tag.
func LooksLikeHTML(content string) bool {
	trimmed := strings.TrimSpace(content)
	return strings.HasPrefix(trimmed, "<") && strings.Contains(trimmed, ">")
}

// FromMarkdown renders markdown (as produced by chat replies) to HTML.
func FromMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func sectionPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("span", "p")
		policy.AllowStyles("text-align").OnElements("p")
	})
	return policy
}

// Sanitize removes scripts, event handlers and anything else not allowed in section content.
func Sanitize(content string) string {
	return sectionPolicy().Sanitize(content)
}
