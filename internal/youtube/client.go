// Package youtube fetches optional video metadata from the YouTube
// Data API. Access is API-key only; no OAuth flows are handled here.
// When no key is configured the pipeline simply skips enrichment.
package youtube

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"

	"github.com/hyperengineering/shortlens/internal/types"
	"github.com/hyperengineering/shortlens/internal/validation"
)

// MetadataFetcher fetches metadata for a YouTube URL. Implementations
// return (nil, nil) when the URL carries no extractable video ID.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, videoURL string) (*types.VideoMetadata, error)
}

// Compile-time interface check
var _ MetadataFetcher = (*Client)(nil)

// videosService is the minimal YouTube API surface used by Client.
type videosService interface {
	List(ctx context.Context, videoID string) (*youtubeapi.VideoListResponse, error)
}

type serviceWrapper struct {
	service *youtubeapi.Service
}

func (w *serviceWrapper) List(ctx context.Context, videoID string) (*youtubeapi.VideoListResponse, error) {
	return w.service.Videos.
		List([]string{"snippet", "contentDetails", "statistics"}).
		Id(videoID).
		Context(ctx).
		Do()
}

// Client fetches video metadata via the YouTube Data API v3.
type Client struct {
	videos videosService
}

// NewClient creates a metadata client authenticated with an API key.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	service, err := youtubeapi.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create YouTube service: %w", err)
	}
	return &Client{videos: &serviceWrapper{service: service}}, nil
}

// FetchMetadata returns title, channel, duration, and view count for
// the video referenced by the URL. A URL that is not a recognizable
// YouTube URL yields (nil, nil): enrichment is optional and uploaded
// files have no metadata to fetch.
func (c *Client) FetchMetadata(ctx context.Context, videoURL string) (*types.VideoMetadata, error) {
	videoID := validation.ExtractYouTubeID(videoURL)
	if videoID == "" {
		return nil, nil
	}

	resp, err := c.videos.List(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("fetch video %s: %w", videoID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("video %s not found", videoID)
	}

	item := resp.Items[0]
	meta := &types.VideoMetadata{VideoID: videoID}
	if item.Snippet != nil {
		meta.Title = item.Snippet.Title
		meta.ChannelTitle = item.Snippet.ChannelTitle
	}
	if item.ContentDetails != nil {
		meta.Duration = ParseISODuration(item.ContentDetails.Duration)
	}
	if item.Statistics != nil {
		meta.ViewCount = item.Statistics.ViewCount
	}
	return meta, nil
}

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISODuration converts an ISO 8601 duration like "PT1M32S" into
// seconds. Unparseable input yields 0.
func ParseISODuration(d string) int64 {
	m := isoDurationPattern.FindStringSubmatch(d)
	if m == nil {
		return 0
	}
	var seconds int64
	if m[1] != "" {
		h, _ := strconv.ParseInt(m[1], 10, 64)
		seconds += h * 3600
	}
	if m[2] != "" {
		min, _ := strconv.ParseInt(m[2], 10, 64)
		seconds += min * 60
	}
	if m[3] != "" {
		s, _ := strconv.ParseInt(m[3], 10, 64)
		seconds += s
	}
	return seconds
}
