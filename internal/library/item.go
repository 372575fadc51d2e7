package library

import "strings"

// Item is one owned release group.
type Item struct {
	RGID            string
	OwnedTrackCount int
	Artist          string
	Title           string
}

// Label renders "Artist - Title", dropping whichever side is missing.
func (i Item) Label() string {
	return strings.Trim(i.Artist+" - "+i.Title, " -")
}

// Labels maps each release group to the label of its first occurrence.
func Labels(items []Item) map[string]string {
	labels := make(map[string]string, len(items))
	for _, item := range items {
		if _, ok := labels[item.RGID]; !ok {
			labels[item.RGID] = item.Label()
		}
	}
	return labels
}
