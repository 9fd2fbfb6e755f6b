// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package render

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/ranking"
)

// Raw HTML in descriptions is dropped; only Markdown is rendered
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

var (
	voteTemplate  = template.Must(template.New("vote").Parse(votePageTemplate))
	adminTemplate = template.Must(template.New("admin").Funcs(template.FuncMap{
		"ago":   func(t, now time.Time) string { return humanize.RelTime(t, now, "ago", "from now") },
		"comma": func(n int) string { return humanize.Comma(int64(n)) },
	}).Parse(adminPageTemplate))
)

// Markdown converts a poll description to HTML
func Markdown(src string) (template.HTML, error) {
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// VotePage is the data for a poll's voting form. Exactly one of Grid and
// List is set.
type VotePage struct {
	Title       string
	Description string
	Slug        string
	PollType    string
	Closed      bool
	Grid        *ranking.Grid
	List        *ranking.List
}

type votePageData struct {
	VotePage
	DescriptionHTML template.HTML
}

// RenderVotePage renders the voting form page
func RenderVotePage(page VotePage) ([]byte, error) {
	desc, err := Markdown(page.Description)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := voteTemplate.Execute(&buf, votePageData{VotePage: page, DescriptionHTML: desc}); err != nil {
		return nil, fmt.Errorf("rendering vote page: %w", err)
	}
	return buf.Bytes(), nil
}

type adminPageData struct {
	Polls []models.PollSummary
	Now   time.Time
}

// RenderAdminPolls renders the server admin poll list. Creation times are
// shown relative to now.
func RenderAdminPolls(polls []models.PollSummary, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := adminTemplate.Execute(&buf, adminPageData{Polls: polls, Now: now}); err != nil {
		return nil, fmt.Errorf("rendering admin page: %w", err)
	}
	return buf.Bytes(), nil
}
