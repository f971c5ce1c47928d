package projection

import (
	"time"

	"github.com/google/uuid"

	"pbbcms/internal/models"
)

// Project is a gallery photo.
type Project struct {
	ID        uuid.UUID `json:"id"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

// WorkStep is one step of the work process.
type WorkStep struct {
	ID          uuid.UUID `json:"id"`
	StepNumber  int       `json:"step_number"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
}

// Video is a showcased YouTube video.
type Video struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	YouTubeURL string    `json:"youtube_url"`
	Thumbnail  *string   `json:"thumbnail"`
	Viewers    int       `json:"viewers"`
	CreatedAt  time.Time `json:"created_at"`
}

// Highlight is a "why choose us" point.
type Highlight struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
}

// Review is a published client review.
type Review struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// Callback is the confirmation returned for a callback request.
type Callback struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// Projects projects the gallery, keeping the store's order.
func Projects(items []models.Project, r Resolver) []Project {
	out := make([]Project, 0, len(items))
	for _, p := range items {
		out = append(out, Project{ID: p.ID, Image: resolve(r, p.Image), CreatedAt: p.CreatedAt})
	}
	return out
}

// WorkSteps projects the process steps.
func WorkSteps(items []models.WorkStep, r Resolver) []WorkStep {
	out := make([]WorkStep, 0, len(items))
	for _, w := range items {
		out = append(out, WorkStep{
			ID:          w.ID,
			StepNumber:  w.StepNumber,
			Title:       w.Title,
			Description: w.Description,
			Image:       resolve(r, w.Image),
			CreatedAt:   w.CreatedAt,
		})
	}
	return out
}

// VideoOf projects a single video.
func VideoOf(v *models.Video, r Resolver) Video {
	var thumb *string
	if v.Thumbnail != nil && *v.Thumbnail != "" {
		resolved := resolve(r, *v.Thumbnail)
		thumb = &resolved
	}
	return Video{
		ID:         v.ID,
		Title:      v.Title,
		YouTubeURL: v.YouTubeURL,
		Thumbnail:  thumb,
		Viewers:    v.Viewers,
		CreatedAt:  v.CreatedAt,
	}
}

// Videos projects the video list.
func Videos(items []models.Video, r Resolver) []Video {
	out := make([]Video, 0, len(items))
	for i := range items {
		out = append(out, VideoOf(&items[i], r))
	}
	return out
}

// Highlights projects active highlights only.
func Highlights(items []models.Highlight) []Highlight {
	out := make([]Highlight, 0, len(items))
	for _, h := range items {
		if !h.IsActive {
			continue
		}
		out = append(out, Highlight{
			ID:          h.ID,
			Title:       h.Title,
			Description: h.Description,
			Order:       h.Order,
			CreatedAt:   h.CreatedAt,
		})
	}
	return out
}

// ReviewOf projects a single review without its moderation flag.
func ReviewOf(rv *models.Review) Review {
	return Review{
		ID:        rv.ID,
		FullName:  rv.FullName,
		Comment:   rv.Comment,
		Rating:    rv.Rating,
		CreatedAt: rv.CreatedAt,
	}
}

// Reviews projects published reviews only.
func Reviews(items []models.Review) []Review {
	out := make([]Review, 0, len(items))
	for i := range items {
		if !items[i].IsActive {
			continue
		}
		out = append(out, ReviewOf(&items[i]))
	}
	return out
}

// CallbackOf projects a stored callback request.
func CallbackOf(c *models.CallbackRequest) Callback {
	return Callback{ID: c.ID, Name: c.Name, Phone: c.Phone, CreatedAt: c.CreatedAt}
}
