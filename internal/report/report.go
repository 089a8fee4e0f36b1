// Package report derives structured views from the generated Markdown analysis.
package report

import (
	"regexp"
	"strings"

	"github.com/lexanalytica/backend/internal/models"
)

var (
	timelineSection = regexp.MustCompile(`(?s)###\s*3\.\s*Case Timeline(.*?)(?:###\s*4\.|$)`)
	eventLine       = regexp.MustCompile(`^\s*[-*]\s+\*\*(.+?):?\*\*:?\s*(.*)$`)
	detailsLine     = regexp.MustCompile(`^\s*[-*]\s+\*\*Details:?\*\*:?\s*(.*)$`)
	scoreLine       = regexp.MustCompile(`(?s)Argument Strength Score.*?SCORE:\s*(\d+\s*/\s*\d+)[^\n]*\n?(.*)`)
	sectionBreak    = regexp.MustCompile(`\n\s*(?:###|\*\*\*)`)
)

// Summary holds the parts of an analysis the web client renders separately.
type Summary struct {
	Timeline      []models.TimelineEvent
	Score         string
	Justification string
}

// Parse extracts the case timeline and the argument strength score. Missing
// sections leave the corresponding fields empty.
func Parse(analysis string) Summary {
	var s Summary
	s.Timeline = parseTimeline(analysis)
	s.Score, s.Justification = parseScore(analysis)
	return s
}

func parseTimeline(analysis string) []models.TimelineEvent {
	m := timelineSection.FindStringSubmatch(analysis)
	if m == nil {
		return nil
	}

	var events []models.TimelineEvent
	var current *models.TimelineEvent
	var details []string

	flush := func() {
		if current == nil {
			return
		}
		current.Details = strings.TrimSpace(strings.Join(details, "\n"))
		events = append(events, *current)
		current, details = nil, nil
	}

	for _, line := range strings.Split(m[1], "\n") {
		if d := detailsLine.FindStringSubmatch(line); d != nil {
			if current != nil {
				details = append(details, d[1])
			}
			continue
		}
		if e := eventLine.FindStringSubmatch(line); e != nil {
			flush()
			current = &models.TimelineEvent{
				Date:  strings.Trim(strings.TrimSpace(e[1]), "[]"),
				Title: strings.Trim(strings.TrimSpace(e[2]), "[]"),
			}
			continue
		}
		if current != nil && len(details) > 0 && strings.TrimSpace(line) != "" && strings.TrimSpace(line) != "***" {
			details = append(details, strings.TrimSpace(line))
		}
	}
	flush()

	return events
}

func parseScore(analysis string) (score, justification string) {
	m := scoreLine.FindStringSubmatch(analysis)
	if m == nil {
		return "", ""
	}
	score = strings.ReplaceAll(m[1], " ", "")

	rest := m[2]
	if loc := sectionBreak.FindStringIndex(rest); loc != nil {
		rest = rest[:loc[0]]
	}
	if idx := strings.Index(rest, "Justification:"); idx >= 0 {
		rest = rest[idx+len("Justification:"):]
	}
	justification = strings.Trim(strings.TrimSpace(rest), "*")
	return score, strings.TrimSpace(justification)
}
