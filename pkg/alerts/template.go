package alerts

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"
	"time"

	"github.com/ogulcanaydogan/battery-observer/pkg/model"
)

// DefaultTemplate renders the alert body.
const DefaultTemplate = `{{.Headline}} Battery at {{.Level}}%` +
	`{{if eq .Kind "low"}} (low threshold {{.Low}}%){{else}} (high threshold {{.High}}%){{end}}`

// TemplateData provides fields for rendering alert content.
type TemplateData struct {
	Kind     string
	Headline string
	Level    int
	Low      int
	High     int
	Time     string
}

// Template renders alert messages.
type Template struct {
	tpl *template.Template
}

// NewTemplate parses an alert template, falling back to DefaultTemplate.
func NewTemplate(tpl string) (*Template, error) {
	if tpl == "" {
		tpl = DefaultTemplate
	}
	parsed, err := template.New("battery-alert").Parse(tpl)
	if err != nil {
		return nil, fmt.Errorf("parse alert template: %w", err)
	}
	return &Template{tpl: parsed}, nil
}

// Render applies the template to data.
func (t *Template) Render(data TemplateData) (string, error) {
	if t == nil || t.tpl == nil {
		return "", errors.New("alert template: nil")
	}
	var buf bytes.Buffer
	if err := t.tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render alert template: %w", err)
	}
	return buf.String(), nil
}

// Build turns an engine event into a deliverable Alert.
func (t *Template) Build(ev model.AlertEvent, th model.Thresholds, now time.Time) (Alert, error) {
	headline := Headline(ev.Kind)
	msg, err := t.Render(TemplateData{
		Kind:     ev.Kind.String(),
		Headline: headline,
		Level:    ev.Level,
		Low:      th.Low,
		High:     th.High,
		Time:     now.Format(time.Kitchen),
	})
	if err != nil {
		return Alert{}, err
	}
	return Alert{
		Kind:      ev.Kind,
		Level:     ev.Level,
		Low:       th.Low,
		High:      th.High,
		Title:     headline,
		Message:   msg,
		Timestamp: now,
	}, nil
}
