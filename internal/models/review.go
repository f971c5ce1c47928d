// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Rating bounds for client reviews.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a client testimonial. Reviews submitted through the public API
// start inactive and only become visible after an admin activates them.
type Review struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Comment   string    `db:"comment" json:"comment"`
	Rating    int       `db:"rating" json:"rating"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ValidRating reports whether r lies within [MinRating, MaxRating].
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// CallbackRequest is a lead asking to be called back.
type CallbackRequest struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Phone       string    `db:"phone" json:"phone"` // stored as submitted
	IsProcessed bool      `db:"is_processed" json:"is_processed"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// MinPhoneDigits is the minimum number of digits a callback phone must contain.
const MinPhoneDigits = 10

// PhoneDigits counts the decimal digits of any script in a phone number,
// ignoring spaces, punctuation and the leading plus sign.
func PhoneDigits(phone string) int {
	n := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
