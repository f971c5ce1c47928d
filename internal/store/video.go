// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"pbbcms/internal/models"
)

// VideoStore manages showcased YouTube videos and their view counters.
type VideoStore struct {
	db *sql.DB
}

// NewVideoStore returns a new VideoStore.
func NewVideoStore(db *sql.DB) *VideoStore {
	return &VideoStore{db: db}
}

var videoColumns = []string{"id", "title", "youtube_url", "thumbnail", "viewers", "created_at"}

// List returns all videos, newest first.
func (s *VideoStore) List(ctx context.Context) ([]models.Video, error) {
	items, err := selectAll[models.Video](ctx, s.db,
		psql.Select(videoColumns...).From("youtube_videos").OrderBy("created_at DESC"))
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return items, nil
}

// FindByID retrieves a video. Returns nil if not found.
func (s *VideoStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	v, err := selectOne[models.Video](ctx, s.db,
		psql.Select(videoColumns...).From("youtube_videos").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("find video: %w", err)
	}
	return v, nil
}

// IncrementViews adds one view in a single statement so concurrent calls
// never lose an update. Returns nil if the video does not exist.
func (s *VideoStore) IncrementViews(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	v, err := getReturning[models.Video](ctx, s.db, psql.Update("youtube_videos").
		Set("viewers", sq.Expr("viewers + 1")).
		Where(sq.Eq{"id": id}).
		Suffix(returning(videoColumns)))
	if err != nil {
		return nil, fmt.Errorf("increment video views: %w", err)
	}
	return v, nil
}

// Create inserts a video with a zero view count.
func (s *VideoStore) Create(ctx context.Context, v *models.Video) (*models.Video, error) {
	created, err := getReturning[models.Video](ctx, s.db, psql.Insert("youtube_videos").
		Columns("title", "youtube_url", "thumbnail").
		Values(v.Title, v.YouTubeURL, v.Thumbnail).
		Suffix(returning(videoColumns)))
	if err != nil {
		return nil, fmt.Errorf("create video: %w", err)
	}
	return created, nil
}

// Update overwrites the editable fields of a video. The view counter is
// left alone. Returns nil if not found.
func (s *VideoStore) Update(ctx context.Context, v *models.Video) (*models.Video, error) {
	updated, err := getReturning[models.Video](ctx, s.db, psql.Update("youtube_videos").
		Set("title", v.Title).
		Set("youtube_url", v.YouTubeURL).
		Set("thumbnail", v.Thumbnail).
		Where(sq.Eq{"id": v.ID}).
		Suffix(returning(videoColumns)))
	if err != nil {
		return nil, fmt.Errorf("update video: %w", err)
	}
	return updated, nil
}

// Delete removes a video and returns it. Returns nil if not found.
func (s *VideoStore) Delete(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	v, err := getReturning[models.Video](ctx, s.db, psql.Delete("youtube_videos").
		Where(sq.Eq{"id": id}).
		Suffix(returning(videoColumns)))
	if err != nil {
		return nil, fmt.Errorf("delete video: %w", err)
	}
	return v, nil
}
