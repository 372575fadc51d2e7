package musicbrainz

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// PageSize is the largest page MusicBrainz serves for browse requests.
const PageSize = 100

// Medium holds the track information reported for one medium of a release.
// Fields are nil when the service omitted them or sent a non-integer value.
type Medium struct {
	TrackCount *int
	// ListedTracks is the length of the explicit tracks array, when present.
	ListedTracks *int
}

// Release is the subset of a MusicBrainz release the statistics need.
type Release struct {
	ID    string
	Media []Medium
}

// TrackTotal sums the track counts across all media. It returns false when the
// release has no media, when any medium reports neither a track count nor a
// track list, or when the sum is not positive.
func (r Release) TrackTotal() (int, bool) {
	if len(r.Media) == 0 {
		return 0, false
	}
	total := 0
	for _, m := range r.Media {
		switch {
		case m.TrackCount != nil:
			total += *m.TrackCount
		case m.ListedTracks != nil:
			total += *m.ListedTracks
		default:
			return 0, false
		}
	}
	if total <= 0 {
		return 0, false
	}
	return total, true
}

// FetchAllReleases pages through every release of the release group rgid.
// Paging stops at release-count or at the first empty page. Any failing page
// fails the whole call.
func (c *Client) FetchAllReleases(ctx context.Context, rgid string) ([]Release, error) {
	rgid = strings.TrimSpace(rgid)
	if rgid == "" {
		return nil, errors.New("musicbrainz: release group id is required")
	}

	var releases []Release
	for offset := 0; ; {
		query := url.Values{}
		query.Set("release-group", rgid)
		query.Set("inc", "media")
		query.Set("fmt", "json")
		query.Set("limit", strconv.Itoa(PageSize))
		query.Set("offset", strconv.Itoa(offset))

		var page map[string]json.RawMessage
		if err := c.Get(ctx, "release", query, &page); err != nil {
			return nil, err
		}
		batch := parseReleases(page["releases"])
		releases = append(releases, batch...)

		total, ok := decodeInt(page["release-count"])
		if !ok || len(batch) == 0 {
			break
		}
		offset += PageSize
		if offset >= total {
			break
		}
	}
	return releases, nil
}

func parseReleases(raw json.RawMessage) []Release {
	var items []json.RawMessage
	if !decodeArray(raw, &items) {
		return nil
	}
	releases := make([]Release, 0, len(items))
	for _, item := range items {
		releases = append(releases, parseRelease(item))
	}
	return releases
}

func parseRelease(raw json.RawMessage) Release {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Release{}
	}
	var release Release
	_ = json.Unmarshal(fields["id"], &release.ID)

	var media []json.RawMessage
	if !decodeArray(fields["media"], &media) {
		return release
	}
	for _, m := range media {
		release.Media = append(release.Media, parseMedium(m))
	}
	return release
}

func parseMedium(raw json.RawMessage) Medium {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Medium{}
	}
	var medium Medium
	if n, ok := decodeInt(fields["track-count"]); ok && n >= 0 {
		medium.TrackCount = &n
	}
	var tracks []json.RawMessage
	if decodeArray(fields["tracks"], &tracks) {
		n := len(tracks)
		medium.ListedTracks = &n
	}
	return medium
}

// decodeInt accepts JSON integer literals only; quoted numbers, floats,
// booleans, and null are rejected.
func decodeInt(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return 0, false
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}

func decodeArray(raw json.RawMessage, dst *[]json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}
