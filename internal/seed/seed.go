// Package seed fills a database with demonstration content for a renovation
// company site: categories, work steps, videos, highlights and reviews.
// Running it wipes the existing public content first.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"pbbcms/internal/models"
	"pbbcms/internal/store"
)

const demoVideoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

// contentTables are cleared before seeding, children first.
var contentTables = []string{
	"client_reviews",
	"why_choose_us",
	"youtube_videos",
	"work_steps",
	"our_projects",
	"service_details",
	"categories",
}

var categoryTree = []struct {
	name string
	subs []string
}{
	{"Budget renovation", []string{
		"Wallpapering",
		"Stretch ceilings",
		"Spot lighting",
		"Laminate flooring",
		"Door installation",
	}},
	{"Standard renovation", []string{
		"Preparatory works",
		"Electrical installation",
		"Plumbing and finishing",
	}},
	{"Designer renovation", []string{
		"Floor plan solution",
		"Interior concept",
		"3D visualization",
		"Working documentation",
	}},
	{"Landscape lighting", []string{
		"Accent lighting",
		"Security lighting",
		"Emergency lighting",
		"Marker lighting",
	}},
}

var workSteps = []models.WorkStep{
	{StepNumber: 1, Title: "You send us the brief", Description: "by any convenient channel: email or messengers"},
	{StepNumber: 2, Title: "We study the plan", Description: "and visit the site for control measurements and an estimate"},
	{StepNumber: 3, Title: "We discuss the project together", Description: "in whatever format suits you, online or in person"},
	{StepNumber: 4, Title: "We agree the estimate and sign the contract", Description: "and start work on site"},
	{StepNumber: 5, Title: "We carry out the work", Description: "coordinating with you, technical supervision, subcontractors and inspectors"},
}

var highlights = []models.Highlight{
	{Title: "AVAILABILITY", Description: "Six-day working week, Monday to Saturday, eight hours a day.", Order: 1, IsActive: true},
	{Title: "PROFESSIONALISM", Description: "We only ask questions that matter and act as the technical client.", Order: 2, IsActive: true},
	{Title: "CONVENIENCE", Description: "Designer materials, any form of payment, closing documents and on-site measurements.", Order: 3, IsActive: true},
	{Title: "GUARANTEES", Description: "Statutory warranty, after-sales service and insurance for the duration of the works.", Order: 4, IsActive: true},
	{Title: "ATTENTION", Description: "To the client's wishes and to every detail. We always clean up after ourselves.", Order: 5, IsActive: true},
	{Title: "RESPONSIBILITY", Description: "For our commitments and deadlines, with quality control at every stage.", Order: 6, IsActive: true},
}

var reviews = []struct {
	name    string
	comment string
}{
	{"Sergey Ivanov", "Many thanks to the PBB team! The project was finished ahead of schedule."},
	{"Nikolay Vlasov", "Loved everything, the work was fast and neat. Recommended!"},
	{"Evgeny Strelkov", "The foundation and assembly were done quickly and well. Friendly and responsive crew."},
	{"Vadim Alekseev", "High quality, careful work, all done very quickly. Go to them and nobody else!"},
}

// Stores bundles the stores the seeder writes through.
type Stores struct {
	Categories *store.CategoryStore
	WorkSteps  *store.WorkStepStore
	Videos     *store.VideoStore
	Highlights *store.HighlightStore
	Reviews    *store.ReviewStore
}

// NewStores builds the seeder's stores on db.
func NewStores(db *sql.DB) Stores {
	return Stores{
		Categories: store.NewCategoryStore(db),
		WorkSteps:  store.NewWorkStepStore(db),
		Videos:     store.NewVideoStore(db),
		Highlights: store.NewHighlightStore(db),
		Reviews:    store.NewReviewStore(db),
	}
}

// Demo wipes the public content tables and inserts the demonstration set.
// Callback requests and admin users are left untouched. Uploaded images
// are not created, so projects and service details stay empty.
func Demo(ctx context.Context, db *sql.DB) error {
	if err := clearContent(ctx, db); err != nil {
		return err
	}

	s := NewStores(db)

	var mains, subs int
	for _, node := range categoryTree {
		main, err := s.Categories.CreateMain(ctx, node.name, true)
		if err != nil {
			return fmt.Errorf("seed main category %q: %w", node.name, err)
		}
		mains++
		for _, name := range node.subs {
			if _, err := s.Categories.CreateSub(ctx, main.ID, name, true); err != nil {
				return fmt.Errorf("seed subcategory %q: %w", name, err)
			}
			subs++
		}
	}

	for i := range workSteps {
		if _, err := s.WorkSteps.Create(ctx, &workSteps[i]); err != nil {
			return fmt.Errorf("seed work step %d: %w", workSteps[i].StepNumber, err)
		}
	}

	for i := 0; i < 4; i++ {
		v := &models.Video{Title: "Three-room apartment renovation", YouTubeURL: demoVideoURL}
		if _, err := s.Videos.Create(ctx, v); err != nil {
			return fmt.Errorf("seed video: %w", err)
		}
	}

	for i := range highlights {
		if _, err := s.Highlights.Create(ctx, &highlights[i]); err != nil {
			return fmt.Errorf("seed highlight %q: %w", highlights[i].Title, err)
		}
	}

	// Public submissions start hidden; demo reviews are published right away.
	for _, r := range reviews {
		created, err := s.Reviews.Submit(ctx, r.name, r.comment, models.MaxRating)
		if err != nil {
			return fmt.Errorf("seed review: %w", err)
		}
		if _, err := s.Reviews.SetActive(ctx, created.ID, true); err != nil {
			return fmt.Errorf("publish review: %w", err)
		}
	}

	slog.Info("demo content seeded",
		"main_categories", mains,
		"subcategories", subs,
		"work_steps", len(workSteps),
		"videos", 4,
		"highlights", len(highlights),
		"reviews", len(reviews),
	)
	return nil
}

func clearContent(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer tx.Rollback()

	for _, table := range contentTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}
	slog.Info("public content cleared")
	return nil
}
