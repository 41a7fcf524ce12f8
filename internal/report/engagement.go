package report

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	topJournalTagsLimit  = 5
	chatHighlightLimit   = 4
	journalHighlightMax  = 3
	highlightSnippetRune = 160
)

type ChatSummary struct {
	Entries      int        `json:"entries"`
	UserMessages int        `json:"userMessages"`
	ByDay        []DayCount `json:"byDay"`
	Highlights   []string   `json:"highlights,omitempty"`
}

func summarizeChat(messages []ChatMessage, loc *time.Location) ChatSummary {
	summary := ChatSummary{Entries: len(messages)}
	byDay := map[string]int{}

	for _, msg := range messages {
		day := resolveDayKey(msg.SentAt, msg.LocalDate, loc)
		if day != "" {
			byDay[day]++
		}
		if strings.EqualFold(strings.TrimSpace(msg.Role), "user") {
			summary.UserMessages++
			if len(summary.Highlights) < chatHighlightLimit {
				if snippet := snippetOf(msg.Content); snippet != "" {
					summary.Highlights = append(summary.Highlights, snippet)
				}
			}
		}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		summary.ByDay = append(summary.ByDay, DayCount{Day: day, Count: byDay[day]})
	}
	return summary
}

type JournalHighlight struct {
	Day     string `json:"day"`
	Snippet string `json:"snippet"`
}

type JournalSummary struct {
	Entries    int                `json:"entries"`
	TopTags    []TopItem          `json:"topTags"`
	ByDay      []DayCount         `json:"byDay"`
	Highlights []JournalHighlight `json:"highlights,omitempty"`
}

func summarizeJournal(entries []JournalEntry, loc *time.Location) JournalSummary {
	summary := JournalSummary{Entries: len(entries)}
	tags := newCounter()
	byDay := map[string]int{}

	ordered := make([]JournalEntry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].LoggedAt.Before(ordered[j].LoggedAt)
	})

	for _, entry := range ordered {
		for _, tag := range entry.Tags {
			tags.add(tag)
		}
		day := resolveDayKey(entry.LoggedAt, entry.LocalDate, loc)
		if day == "" {
			continue
		}
		byDay[day]++
		if len(summary.Highlights) < journalHighlightMax {
			if snippet := snippetOf(entry.Text); snippet != "" {
				summary.Highlights = append(summary.Highlights, JournalHighlight{Day: day, Snippet: snippet})
			}
		}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		summary.ByDay = append(summary.ByDay, DayCount{Day: day, Count: byDay[day]})
	}
	summary.TopTags = tags.top(topJournalTagsLimit)
	return summary
}

func snippetOf(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	if utf8.RuneCountInString(trimmed) <= highlightSnippetRune {
		return trimmed
	}
	runes := []rune(trimmed)
	return string(runes[:highlightSnippetRune]) + "..."
}
