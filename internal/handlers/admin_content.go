// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"pbbcms/internal/apierror"
	"pbbcms/internal/cache"
	"pbbcms/internal/models"
	"pbbcms/internal/projection"
	"pbbcms/internal/store"
)

// --- Projects ---

// ProjectsList returns a page of project photos, newest first.
func (a *Admin) ProjectsList(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	items, total, err := a.stores.Projects.Paged(r.Context(), page)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	apierror.WriteJSON(w, http.StatusOK, paged(projection.Projects(items, a.storage), total, page))
}

// ProjectCreate uploads a project photo from the "image" form field.
func (a *Admin) ProjectCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := parseUpload(w, r); err != nil {
		apierror.Respond(w, r, err)
		return
	}
	img, err := requireImage(r, "image")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	key, err := a.upload(ctx, folderProjects, img)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	p, err := a.stores.Projects.Create(ctx, key)
	if err != nil {
		a.storage.Discard(ctx, key)
		apierror.Respond(w, r, err)
		return
	}
	a.cache.Invalidate(ctx, cache.KeyProjects)
	apierror.WriteJSON(w, http.StatusCreated, projection.Projects([]models.Project{*p}, a.storage)[0])
}

// ProjectDelete removes a project photo and its object.
func (a *Admin) ProjectDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "project")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	p, err := a.stores.Projects.Delete(ctx, id)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if p == nil {
		apierror.Respond(w, r, apierror.NotFound("project"))
		return
	}

	a.storage.Discard(ctx, p.Image)
	a.cache.Invalidate(ctx, cache.KeyProjects)
	w.WriteHeader(http.StatusNoContent)
}

// --- Work steps ---

type workStepForm struct {
	StepNumber  *int   `json:"step_number" validate:"required"`
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
}

func readWorkStepForm(r *http.Request) (*workStepForm, error) {
	n, err := formInt(r, "step_number")
	if err != nil {
		return nil, err
	}
	f := &workStepForm{
		StepNumber:  n,
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	if err := validateRequest(f); err != nil {
		return nil, err
	}
	return f, nil
}

var errStepTaken = apierror.Field("step_number", "Work step with this step number already exists.")

// WorkStepsList returns every work step in step order.
func (a *Admin) WorkStepsList(w http.ResponseWriter, r *http.Request) {
	items, err := a.stores.WorkSteps.List(r.Context())
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	apierror.WriteJSON(w, http.StatusOK, projection.WorkSteps(items, a.storage))
}

// WorkStepCreate adds a step from a multipart form with a required image.
func (a *Admin) WorkStepCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := parseUpload(w, r); err != nil {
		apierror.Respond(w, r, err)
		return
	}
	f, err := readWorkStepForm(r)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	img, err := requireImage(r, "image")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	key, err := a.upload(ctx, folderWorkSteps, img)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	step, err := a.stores.WorkSteps.Create(ctx, &models.WorkStep{
		StepNumber:  *f.StepNumber,
		Title:       f.Title,
		Description: f.Description,
		Image:       key,
	})
	if err != nil {
		a.storage.Discard(ctx, key)
		if errors.Is(err, store.ErrDuplicateStepNumber) {
			err = errStepTaken
		}
		apierror.Respond(w, r, err)
		return
	}
	a.cache.Invalidate(ctx, cache.KeyWorkSteps)
	apierror.WriteJSON(w, http.StatusCreated, projection.WorkSteps([]models.WorkStep{*step}, a.storage)[0])
}

// WorkStepUpdate edits a step. The image is replaced only when a new one
// is uploaded.
func (a *Admin) WorkStepUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "work step")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	current, err := a.stores.WorkSteps.FindByID(ctx, id)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if current == nil {
		apierror.Respond(w, r, apierror.NotFound("work step"))
		return
	}

	if err := parseUpload(w, r); err != nil {
		apierror.Respond(w, r, err)
		return
	}
	f, err := readWorkStepForm(r)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	img, err := formImage(r, "image")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	key := current.Image
	if img != nil {
		if key, err = a.upload(ctx, folderWorkSteps, img); err != nil {
			apierror.Respond(w, r, err)
			return
		}
	}

	step, err := a.stores.WorkSteps.Update(ctx, &models.WorkStep{
		ID:          id,
		StepNumber:  *f.StepNumber,
		Title:       f.Title,
		Description: f.Description,
		Image:       key,
	})
	if err == nil && step == nil {
		err = apierror.NotFound("work step")
	}
	if err != nil {
		if img != nil {
			a.storage.Discard(ctx, key)
		}
		if errors.Is(err, store.ErrDuplicateStepNumber) {
			err = errStepTaken
		}
		apierror.Respond(w, r, err)
		return
	}

	if img != nil {
		a.storage.Discard(ctx, current.Image)
	}
	a.cache.Invalidate(ctx, cache.KeyWorkSteps)
	apierror.WriteJSON(w, http.StatusOK, projection.WorkSteps([]models.WorkStep{*step}, a.storage)[0])
}

// WorkStepDelete removes a step and its image.
func (a *Admin) WorkStepDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "work step")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	step, err := a.stores.WorkSteps.Delete(ctx, id)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if step == nil {
		apierror.Respond(w, r, apierror.NotFound("work step"))
		return
	}

	a.storage.Discard(ctx, step.Image)
	a.cache.Invalidate(ctx, cache.KeyWorkSteps)
	w.WriteHeader(http.StatusNoContent)
}

// --- Videos ---

type videoForm struct {
	Title      string `json:"title" validate:"required,max=255"`
	YouTubeURL string `json:"youtube_url" validate:"required,http_url,max=200"`
}

func readVideoForm(r *http.Request) (*videoForm, error) {
	f := &videoForm{
		Title:      strings.TrimSpace(r.FormValue("title")),
		YouTubeURL: strings.TrimSpace(r.FormValue("youtube_url")),
	}
	if err := validateRequest(f); err != nil {
		return nil, err
	}
	return f, nil
}

// VideosList returns every video, newest first, with view counts.
func (a *Admin) VideosList(w http.ResponseWriter, r *http.Request) {
	items, err := a.stores.Videos.List(r.Context())
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	apierror.WriteJSON(w, http.StatusOK, projection.Videos(items, a.storage))
}

// VideoCreate adds a video. The "thumbnail" image is optional.
func (a *Admin) VideoCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := parseUpload(w, r); err != nil {
		apierror.Respond(w, r, err)
		return
	}
	f, err := readVideoForm(r)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	thumb, err := a.optionalUpload(ctx, r, "thumbnail", folderVideos)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	v, err := a.stores.Videos.Create(ctx, &models.Video{
		Title:      f.Title,
		YouTubeURL: f.YouTubeURL,
		Thumbnail:  thumb,
	})
	if err != nil {
		if thumb != nil {
			a.storage.Discard(ctx, *thumb)
		}
		apierror.Respond(w, r, err)
		return
	}
	a.cache.Invalidate(ctx, cache.KeyVideos)
	apierror.WriteJSON(w, http.StatusCreated, projection.VideoOf(v, a.storage))
}

// VideoUpdate edits a video's title, link and thumbnail. Sending
// clear_thumbnail=true removes the thumbnail. The view counter is kept.
func (a *Admin) VideoUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "video")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	current, err := a.stores.Videos.FindByID(ctx, id)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if current == nil {
		apierror.Respond(w, r, apierror.NotFound("video"))
		return
	}

	if err := parseUpload(w, r); err != nil {
		apierror.Respond(w, r, err)
		return
	}
	f, err := readVideoForm(r)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	uploaded, err := a.optionalUpload(ctx, r, "thumbnail", folderVideos)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	thumb := current.Thumbnail
	switch {
	case uploaded != nil:
		thumb = uploaded
	case r.FormValue("clear_thumbnail") == "true":
		thumb = nil
	}

	v, err := a.stores.Videos.Update(ctx, &models.Video{
		ID:         id,
		Title:      f.Title,
		YouTubeURL: f.YouTubeURL,
		Thumbnail:  thumb,
	})
	if err == nil && v == nil {
		err = apierror.NotFound("video")
	}
	if err != nil {
		if uploaded != nil {
			a.storage.Discard(ctx, *uploaded)
		}
		apierror.Respond(w, r, err)
		return
	}

	if current.Thumbnail != nil && thumb != current.Thumbnail {
		a.storage.Discard(ctx, *current.Thumbnail)
	}
	a.cache.Invalidate(ctx, cache.KeyVideos)
	apierror.WriteJSON(w, http.StatusOK, projection.VideoOf(v, a.storage))
}

// VideoDelete removes a video and its thumbnail.
func (a *Admin) VideoDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "video")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	v, err := a.stores.Videos.Delete(ctx, id)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if v == nil {
		apierror.Respond(w, r, apierror.NotFound("video"))
		return
	}

	if v.Thumbnail != nil {
		a.storage.Discard(ctx, *v.Thumbnail)
	}
	a.cache.Invalidate(ctx, cache.KeyVideos)
	w.WriteHeader(http.StatusNoContent)
}

// optionalUpload stores the named image field if one was sent.
func (a *Admin) optionalUpload(ctx context.Context, r *http.Request, field, folder string) (*string, error) {
	img, err := formImage(r, field)
	if err != nil || img == nil {
		return nil, err
	}
	key, err := a.upload(ctx, folder, img)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// --- Highlights ---

type highlightRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
	Order       int    `json:"order"`
	IsActive    *bool  `json:"is_active"`
}

func decodeHighlight(w http.ResponseWriter, r *http.Request) (*models.Highlight, error) {
	var req highlightRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	return &models.Highlight{
		Title:       req.Title,
		Description: req.Description,
		Order:       req.Order,
		IsActive:    activeOrDefault(req.IsActive),
	}, nil
}

// HighlightsList returns every highlight, active or not, in display order.
func (a *Admin) HighlightsList(w http.ResponseWriter, r *http.Request) {
	items, err := a.stores.Highlights.List(r.Context())
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if items == nil {
		items = []models.Highlight{}
	}
	apierror.WriteJSON(w, http.StatusOK, items)
}

// HighlightCreate adds a highlight.
func (a *Admin) HighlightCreate(w http.ResponseWriter, r *http.Request) {
	h, err := decodeHighlight(w, r)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	created, err := a.stores.Highlights.Create(r.Context(), h)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	a.cache.Invalidate(r.Context(), cache.KeyHighlights)
	apierror.WriteJSON(w, http.StatusCreated, created)
}

// HighlightUpdate overwrites a highlight.
func (a *Admin) HighlightUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "highlight")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	h, err := decodeHighlight(w, r)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	h.ID = id

	updated, err := a.stores.Highlights.Update(r.Context(), h)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if updated == nil {
		apierror.Respond(w, r, apierror.NotFound("highlight"))
		return
	}
	a.cache.Invalidate(r.Context(), cache.KeyHighlights)
	apierror.WriteJSON(w, http.StatusOK, updated)
}

// HighlightDelete removes a highlight.
func (a *Admin) HighlightDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "highlight")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	ok, err := a.stores.Highlights.Delete(r.Context(), id)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if !ok {
		apierror.Respond(w, r, apierror.NotFound("highlight"))
		return
	}
	a.cache.Invalidate(r.Context(), cache.KeyHighlights)
	w.WriteHeader(http.StatusNoContent)
}
