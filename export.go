package main

import (
	"fmt"
	"strings"
	"time"
)

// buildExport renders a user's stories as the plain-text export artifact.
// stories are given newest-first (store order); the file lists them oldest
// to newest.
func buildExport(stories []Story, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("My Storyworthy Moments\n")
	fmt.Fprintf(&sb, "Exported on %s\n", now.Format("2006-01-02"))
	fmt.Fprintf(&sb, "Total moments: %d\n", len(stories))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	for i := len(stories) - 1; i >= 0; i-- {
		st := stories[i]
		fmt.Fprintf(&sb, "%d. %s\n", len(stories)-i, st.CreatedAt.Format("2006-01-02"))
		sb.WriteString(st.StoryText + "\n")
		sb.WriteString(strings.Repeat("-", 50) + "\n\n")
	}

	sb.WriteString("\n" + strings.Repeat("=", 50) + "\n")
	sb.WriteString(`"When you start looking for story-worthy moments in your life, ` +
		`you start to see them everywhere." - Matthew Dicks` + "\n")
	return sb.String()
}

// exportFilename builds the attachment name, e.g. moments_Anna_2026-08-30.txt.
func exportFilename(firstName string, now time.Time) string {
	name := strings.TrimSpace(firstName)
	if name == "" {
		name = "export"
	}
	// Strip characters that are awkward in filenames.
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, name)
	return fmt.Sprintf("moments_%s_%s.txt", name, now.Format("2006-01-02"))
}
