package assistant

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"FlowdeskSaas/api/constants"
)

// ParsedTask is the structured result of interpreting a natural-language
// task request.
type ParsedTask struct {
	Title    string
	Priority string
	DueDate  *time.Time
	Points   int
}

var (
	pointsRe   = regexp.MustCompile(`(?i)\b(?:worth|for)\s+(\d+)\s*(?:points?|pts?)\b`)
	dateRe     = regexp.MustCompile(`(?i)\b(?:by|on|before|due)\s+(\d{4}-\d{2}-\d{2})\b`)
	weekdayRe  = regexp.MustCompile(`(?i)\b(?:by|on|before|due)\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	relativeRe = regexp.MustCompile(`(?i)\b(?:by|due)?\s*(today|tomorrow|next week)\b`)
	fillerRe   = regexp.MustCompile(`(?i)^(?:please\s+)?(?:can you\s+)?(?:create|add|make|remind me to|i need to|set up)\s+(?:a\s+|an\s+)?(?:task\s+(?:to|for)?\s*)?`)
)

var priorityWords = map[string]string{
	"urgent": "high", "asap": "high", "critical": "high",
	"important": "high", "high priority": "high",
	"low priority": "low", "whenever": "low", "someday": "low",
}

var weekdays = map[string]time.Weekday{
	"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday, "sunday": time.Sunday,
}

// nextWeekday returns the next occurrence of wd strictly after today.
func nextWeekday(from time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(from.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return from.AddDate(0, 0, days)
}

// Parse extracts title, priority, due date, and point value from free text.
// Recognized phrases are stripped from the title; anything left over, cleaned
// of filler prefixes, becomes the title.
func Parse(text string, now time.Time) ParsedTask {
	parsed := ParsedTask{Priority: "medium", Points: 10}
	working := strings.TrimSpace(text)

	lower := strings.ToLower(working)
	for phrase, prio := range priorityWords {
		if strings.Contains(lower, phrase) {
			parsed.Priority = prio
			re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b[,.!]?`)
			working = re.ReplaceAllString(working, "")
			break
		}
	}

	if m := pointsRe.FindStringSubmatch(working); m != nil {
		if pts, err := strconv.Atoi(m[1]); err == nil && pts > 0 {
			parsed.Points = pts
		}
		working = pointsRe.ReplaceAllString(working, "")
	}

	today := now.UTC().Truncate(24 * time.Hour)
	switch {
	case dateRe.MatchString(working):
		m := dateRe.FindStringSubmatch(working)
		if d, err := time.Parse(constants.DateFormat, m[1]); err == nil {
			parsed.DueDate = &d
		}
		working = dateRe.ReplaceAllString(working, "")
	case weekdayRe.MatchString(working):
		m := weekdayRe.FindStringSubmatch(working)
		d := nextWeekday(today, weekdays[strings.ToLower(m[1])])
		parsed.DueDate = &d
		working = weekdayRe.ReplaceAllString(working, "")
	case relativeRe.MatchString(working):
		m := relativeRe.FindStringSubmatch(working)
		var d time.Time
		switch strings.ToLower(m[1]) {
		case "today":
			d = today
		case "tomorrow":
			d = today.AddDate(0, 0, 1)
		case "next week":
			d = today.AddDate(0, 0, 7)
		}
		parsed.DueDate = &d
		working = relativeRe.ReplaceAllString(working, "")
	}

	working = fillerRe.ReplaceAllString(strings.TrimSpace(working), "")
	working = strings.Trim(strings.TrimSpace(working), ",.!")
	if working == "" {
		working = strings.TrimSpace(text)
	}
	parsed.Title = working
	return parsed
}
