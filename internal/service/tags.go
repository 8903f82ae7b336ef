package service

import "strings"

// ParseTags splits comma separated text into trimmed, non-empty tags.
// Duplicates are kept.
func ParseTags(text string) []string {
	tags := []string{}
	for _, t := range strings.Split(text, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// JoinTags renders tags as the text ParseTags reads back.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
