package library

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"cancomp/internal/logging"
)

const (
	defaultTimeout = 60 * time.Second
	payloadLimit   = 4096
)

// HTTPDoer describes the HTTP client used by the Lidarr provider.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config describes the Lidarr connection.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient HTTPDoer
	Logger     *slog.Logger
}

// Options narrows a library listing.
type Options struct {
	// LimitAlbums caps how many albums with files are inspected. Zero means no limit.
	LimitAlbums int
}

// LidarrClient lists owned release groups from a Lidarr instance.
type LidarrClient struct {
	baseURL *url.URL
	apiKey  string
	client  HTTPDoer
	logger  *slog.Logger
}

// NewLidarr validates cfg and returns a client.
func NewLidarr(cfg Config) (*LidarrClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("lidarr: api key is required")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("lidarr: base url is required")
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("lidarr: parse base url: %w", err)
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &LidarrClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  client,
		logger:  logging.NewComponentLogger(cfg.Logger, "lidarr"),
	}, nil
}

type albumResource struct {
	ID             int    `json:"id"`
	ForeignAlbumID string `json:"foreignAlbumId"`
	Title          string `json:"title"`
	Artist         *struct {
		ArtistName string `json:"artistName"`
	} `json:"artist"`
	Statistics *struct {
		TrackFileCount int `json:"trackFileCount"`
	} `json:"statistics"`
}

func (a albumResource) artistName() string {
	if a.Artist == nil {
		return ""
	}
	return a.Artist.ArtistName
}

func (a albumResource) trackFiles() int {
	if a.Statistics == nil {
		return 0
	}
	return a.Statistics.TrackFileCount
}

// FetchItems returns owned release groups sorted by artist, title, then RGID.
// OwnedTrackCount is the number of track files across every album mapped to
// the release group.
func (c *LidarrClient) FetchItems(ctx context.Context, opts Options) ([]Item, error) {
	var albums []albumResource
	if err := c.get(ctx, "api/v1/album", nil, &albums); err != nil {
		return nil, err
	}

	withFiles := make([]albumResource, 0, len(albums))
	for _, album := range albums {
		if album.trackFiles() > 0 {
			withFiles = append(withFiles, album)
		}
	}
	if opts.LimitAlbums > 0 && len(withFiles) > opts.LimitAlbums {
		withFiles = withFiles[:opts.LimitAlbums]
	}
	c.logger.Info("lidarr albums listed",
		logging.Int("albums", len(albums)),
		logging.Int("albums_with_files", len(withFiles)),
	)

	index := make(map[string]int)
	var items []Item
	for _, album := range withFiles {
		var files []json.RawMessage
		query := url.Values{"albumId": {strconv.Itoa(album.ID)}}
		if err := c.get(ctx, "api/v1/trackfile", query, &files); err != nil {
			return nil, err
		}
		rgid := strings.TrimSpace(album.ForeignAlbumID)
		if rgid == "" {
			c.logger.Debug("album without release group skipped", logging.Int("album_id", album.ID))
			continue
		}
		if pos, ok := index[rgid]; ok {
			items[pos].OwnedTrackCount += len(files)
			continue
		}
		index[rgid] = len(items)
		items = append(items, Item{
			RGID:            rgid,
			OwnedTrackCount: len(files),
			Artist:          album.artistName(),
			Title:           album.Title,
		})
	}

	slices.SortStableFunc(items, func(a, b Item) int {
		return cmp.Or(
			strings.Compare(a.Artist, b.Artist),
			strings.Compare(a.Title, b.Title),
			strings.Compare(a.RGID, b.RGID),
		)
	})
	return items, nil
}

// Ping checks that Lidarr answers authenticated requests.
func (c *LidarrClient) Ping(ctx context.Context) error {
	var status map[string]any
	return c.get(ctx, "api/v1/system/status", nil, &status)
}

func (c *LidarrClient) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL.JoinPath(path)
	endpoint.RawQuery = query.Encode()
	target := endpoint.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &Error{URL: target, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &Error{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, payloadLimit))
		return &Error{URL: target, StatusCode: resp.StatusCode, Payload: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
