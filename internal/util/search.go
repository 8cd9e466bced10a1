package util

import (
	"regexp"
	"strings"
)

// SearchQuery represents the parsed components of a task filter such as
// "team:platform color:indigo launch".
type SearchQuery struct {
	Teams     []string
	Timelines []string
	Colors    []string
	Text      []string
}

var (
	teamRegex     = regexp.MustCompile(`team:(\S+)`)
	timelineRegex = regexp.MustCompile(`timeline:(\S+)`)
	colorRegex    = regexp.MustCompile(`color:(\w+)`)
)

// ParseSearchQuery breaks down a raw query string into its structured components.
func ParseSearchQuery(query string) SearchQuery {
	sq := SearchQuery{}

	extract := func(re *regexp.Regexp) []string {
		matches := re.FindAllStringSubmatch(query, -1)
		if matches == nil {
			return nil
		}
		var values []string
		for _, match := range matches {
			if len(match) > 1 {
				values = append(values, strings.ToLower(match[1]))
			}
		}
		query = re.ReplaceAllString(query, "")
		return values
	}

	sq.Teams = extract(teamRegex)
	sq.Timelines = extract(timelineRegex)
	sq.Colors = extract(colorRegex)
	for _, word := range strings.Fields(query) {
		sq.Text = append(sq.Text, strings.ToLower(word))
	}

	return sq
}

// Empty reports whether the query has no filters at all.
func (q SearchQuery) Empty() bool {
	return len(q.Teams) == 0 && len(q.Timelines) == 0 && len(q.Colors) == 0 && len(q.Text) == 0
}

// Matches reports whether a task with the given team, timeline, color and
// name satisfies every part of the query. Team and timeline filters match
// name prefixes; text words must all appear in the task name.
func (q SearchQuery) Matches(team, timeline, color, name string) bool {
	if !anyPrefix(q.Teams, team) || !anyPrefix(q.Timelines, timeline) {
		return false
	}
	if len(q.Colors) > 0 && !contains(q.Colors, strings.ToLower(color)) {
		return false
	}
	lowerName := strings.ToLower(name)
	for _, word := range q.Text {
		if !strings.Contains(lowerName, word) {
			return false
		}
	}
	return true
}

func anyPrefix(prefixes []string, value string) bool {
	if len(prefixes) == 0 {
		return true
	}
	value = strings.ToLower(value)
	for _, p := range prefixes {
		if strings.HasPrefix(value, p) {
			return true
		}
	}
	return false
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
