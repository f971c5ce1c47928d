// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a node in the two-level service catalog. A category without a
// parent is a main category; one with a parent is a subcategory.
type Category struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	ParentID  *uuid.UUID `db:"parent_id" json:"parent_id"`
	IsActive  bool       `db:"is_active" json:"is_active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// IsSubcategory reports whether the category hangs under a parent.
func (c *Category) IsSubcategory() bool {
	return c.ParentID != nil
}

// IsMain reports whether the category is a top-level main category.
func (c *Category) IsMain() bool {
	return c.ParentID == nil
}

// ServiceDetail is one image in the ordered gallery of a category
// (in practice always a subcategory).
type ServiceDetail struct {
	ID         uuid.UUID `db:"id" json:"id"`
	CategoryID uuid.UUID `db:"category_id" json:"category_id"`
	Image      string    `db:"image" json:"image"` // object storage key
	Order      int       `db:"sort_order" json:"order"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Less orders service details by display order, then creation time.
func (d *ServiceDetail) Less(other *ServiceDetail) bool {
	if d.Order != other.Order {
		return d.Order < other.Order
	}
	return d.CreatedAt.Before(other.CreatedAt)
}
