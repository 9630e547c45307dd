package video

import (
	"context"

	"hearingwatch/config"
	"hearingwatch/logging"
	"hearingwatch/types"

	"go.uber.org/zap"
)

// Catalog retrieves a bounded, newest-first window of a channel's uploads.
type Catalog struct {
	platform Platform
	logger   *zap.Logger
	pageSize int64
	maxPages int
}

// NewCatalog creates a Catalog walking at most config.MaxVideoPages pages of
// config.VideoPageSize videos.
func NewCatalog(platform Platform, logger *zap.Logger) *Catalog {
	return &Catalog{
		platform: platform,
		logger:   logging.NopIfNil(logger),
		pageSize: config.VideoPageSize,
		maxPages: config.MaxVideoPages,
	}
}

// FetchRecent returns up to maxPages pages of the channel's uploads. It never
// fails: any transport error is logged and yields no videos at all, since a
// partial window cannot be resumed once token continuity is lost.
func (c *Catalog) FetchRecent(ctx context.Context, channelID string) []types.Video {
	logger := c.logger.With(zap.String(logging.FieldChannelID, channelID))

	playlistID, err := c.platform.UploadsPlaylist(ctx, channelID)
	if err != nil {
		logger.Error("failed to resolve uploads playlist", zap.Error(err))
		return nil
	}

	var (
		videos    []types.Video
		pageToken string
	)
	for page := 0; page < c.maxPages; page++ {
		p, err := c.platform.PlaylistPage(ctx, playlistID, pageToken, c.pageSize)
		if err != nil {
			logger.Error("failed to get playlist items",
				zap.String("playlist_id", playlistID),
				zap.Int("page", page+1),
				zap.Error(err))
			return nil
		}
		videos = append(videos, p.Videos...)

		pageToken = p.NextPageToken
		if pageToken == "" {
			break
		}
	}

	logger.Debug("fetched channel uploads", zap.Int("videos", len(videos)))
	return videos
}
