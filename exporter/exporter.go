// Package exporter turns a finished formal record (Markdown) into a
// standalone HTML document the browser can download and print.
package exporter

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
)

// Document is a rendered record ready for download.
type Document struct {
	Title    string
	Filename string
	HTML     []byte
}

const defaultTitle = "Supervision Record"

// FromMarkdown converts the record into a self-contained document. The
// line order of the source is preserved by goldmark's block rendering.
func FromMarkdown(md string) (Document, error) {
	if strings.TrimSpace(md) == "" {
		return Document{}, errors.New("record is empty")
	}

	var body bytes.Buffer
	if err := goldmark.Convert([]byte(md), &body); err != nil {
		return Document{}, fmt.Errorf("convert markdown: %w", err)
	}

	title := extractTitle(md)
	if title == "" {
		title = defaultTitle
	}

	var doc bytes.Buffer
	doc.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	doc.WriteString("<title>")
	doc.WriteString(htmlEscape(title))
	doc.WriteString("</title>\n<style>\n")
	doc.WriteString("body{font-family:Georgia,serif;max-width:42rem;margin:3rem auto;padding:0 1rem;line-height:1.6;color:#222}\n")
	doc.WriteString("h1{border-bottom:2px solid #222;padding-bottom:.3rem}\n")
	doc.WriteString("h2{margin-top:2rem;color:#444}\n")
	doc.WriteString("@media print{body{margin:0 auto}}\n")
	doc.WriteString("</style>\n</head>\n<body>\n")
	doc.Write(body.Bytes())
	doc.WriteString("</body>\n</html>\n")

	return Document{
		Title:    title,
		Filename: slugify(title) + ".html",
		HTML:     doc.Bytes(),
	}, nil
}

var titleRe = regexp.MustCompile(`(?m)^#\s+(.+)$`)

func extractTitle(md string) string {
	m := titleRe.FindStringSubmatch(md)
	if len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(s), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "supervision-record"
	}
	return slug
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
