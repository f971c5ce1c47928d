// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is a single photo in the "our projects" gallery.
type Project struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Image     string    `db:"image" json:"image"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// WorkStep is one numbered step of the work process. Step numbers are unique.
type WorkStep struct {
	ID          uuid.UUID `db:"id" json:"id"`
	StepNumber  int       `db:"step_number" json:"step_number"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Image       string    `db:"image" json:"image"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Video is a showcased YouTube video. Viewers is the only field the
// server mutates after creation.
type Video struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	YouTubeURL string    `db:"youtube_url" json:"youtube_url"`
	Thumbnail  *string   `db:"thumbnail" json:"thumbnail"`
	Viewers    int       `db:"viewers" json:"viewers"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Highlight is a "why choose us" marketing point.
type Highlight struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Order       int       `db:"sort_order" json:"order"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
