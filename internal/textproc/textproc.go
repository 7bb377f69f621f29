// Package textproc prepares raw resume and job text for embedding.
// Cleaning is total: any input yields a string, possibly empty.
package textproc

import (
	"html"
	"regexp"
	"strings"

	"job-match/internal/jobs"
)

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
	urlPattern     = regexp.MustCompile(`https?://\S+`)
	emailPattern   = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern   = regexp.MustCompile(`\(?\d{3}\)?[\s.-]?\d{3}[.-]?\d{4}`)
	specialPattern = regexp.MustCompile(`[^\w\s.,!?;:()\-]`)
	punctPattern   = regexp.MustCompile(`[.,!?;:]+`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// Clean strips markup and contact noise from text and normalizes it to
// lowercase single-spaced words.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	// &amp; -> & before tag stripping
	text = html.UnescapeString(text)
	text = htmlTagPattern.ReplaceAllString(text, " ")
	text = urlPattern.ReplaceAllString(text, " ")
	text = emailPattern.ReplaceAllString(text, " ")
	text = phonePattern.ReplaceAllString(text, " ")
	text = specialPattern.ReplaceAllString(text, " ")
	text = punctPattern.ReplaceAllString(text, " ")
	text = spacePattern.ReplaceAllString(text, " ")

	return strings.TrimSpace(strings.ToLower(text))
}

// PrepareJobText combines a candidate's fields into one embedding input.
// The title is repeated so it carries more weight than the description.
func PrepareJobText(c jobs.Candidate) string {
	var parts []string
	if c.Title != "" && c.Title != "N/A" {
		parts = append(parts, c.Title, c.Title)
	}
	if c.Company != "" && c.Company != "N/A" {
		parts = append(parts, c.Company)
	}
	if c.Location != "" && c.Location != "N/A" {
		parts = append(parts, c.Location)
	}
	if c.Description != "" {
		parts = append(parts, c.Description)
	}
	return strings.Join(parts, " ")
}
