// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"pbbcms/internal/apierror"
	"pbbcms/internal/cache"
	"pbbcms/internal/models"
	"pbbcms/internal/projection"
	"pbbcms/internal/storage"
	"pbbcms/internal/store"
)

// Stores bundles the content stores shared by the public and admin APIs.
type Stores struct {
	Categories *store.CategoryStore
	Details    *store.ServiceDetailStore
	Projects   *store.ProjectStore
	WorkSteps  *store.WorkStepStore
	Videos     *store.VideoStore
	Highlights *store.HighlightStore
	Reviews    *store.ReviewStore
	Callbacks  *store.CallbackStore
}

// API groups the public JSON endpoints. Listings are served from the
// Valkey response cache when possible and stored there on miss.
type API struct {
	stores  Stores
	storage *storage.Client
	cache   *cache.ResponseCache
}

// NewAPI creates the public API handler group. storageClient and
// responseCache may be nil.
func NewAPI(stores Stores, storageClient *storage.Client, responseCache *cache.ResponseCache) *API {
	return &API{
		stores:  stores,
		storage: storageClient,
		cache:   responseCache,
	}
}

// Categories lists active main categories with their active subcategories
// and galleries. ?page= switches on pagination of the outer list and
// ?search= filters it by name; neither affects the nested lists.
func (a *API) Categories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := categoryParams(r)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	key, cacheable := categoriesCacheKey(params)
	if cacheable {
		if e, ok := a.cache.Get(ctx, key); ok {
			writeEntry(w, e)
			return
		}
	}
	gen, genErr := a.cache.Generation(ctx)

	body, total, err := a.loadCategories(ctx, params)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	e, err := newEntry(body)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if params.Page != nil {
		e.TotalCount = strconv.Itoa(total)
	}
	// Pages past the end are not stored, so the number of keys is bounded
	// by the number of categories.
	if cacheable && genErr == nil && (len(body) > 0 || params.Page == nil || params.Page.Number == 1) {
		a.cache.SetIfCurrent(ctx, key, e, gen)
	}
	writeEntry(w, e)
}

// categoryParams reads ?search=, ?page= and ?page_size=. Other parameters
// are ignored.
func categoryParams(r *http.Request) (store.ListParams, error) {
	params := store.ListParams{Search: strings.TrimSpace(r.URL.Query().Get("search"))}
	if r.URL.Query().Get("page") != "" {
		page, err := queryPage(r)
		if err != nil {
			return store.ListParams{}, err
		}
		params.Page = &page
	}
	return params, nil
}

// categoriesCacheKey maps parsed parameters to a cache key. Searches are
// free text and always go to the database.
func categoriesCacheKey(params store.ListParams) (string, bool) {
	if params.Search != "" {
		return "", false
	}
	if params.Page == nil {
		return cache.CategoriesKey(0, 0), true
	}
	return cache.CategoriesKey(params.Page.Number, params.Page.Size), true
}

func (a *API) loadCategories(ctx context.Context, params store.ListParams) ([]projection.MainCategory, int, error) {
	roots, total, err := a.stores.Categories.ListActiveRoots(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	children := make(map[uuid.UUID][]models.Category, len(roots))
	var subIDs []uuid.UUID
	for _, root := range roots {
		subs, err := a.stores.Categories.ListActiveChildren(ctx, root.ID)
		if err != nil {
			return nil, 0, err
		}
		children[root.ID] = subs
		for _, sub := range subs {
			subIDs = append(subIDs, sub.ID)
		}
	}

	details, err := a.stores.Details.ListByCategories(ctx, subIDs)
	if err != nil {
		return nil, 0, err
	}

	return projection.MainCategories(roots, children, details, a.storage), total, nil
}

// ServiceDetails returns the gallery of one active subcategory.
func (a *API) ServiceDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := queryID(r, "sub_category_id", "subcategory")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	sub, err := a.stores.Categories.FindActiveSubcategory(ctx, id)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if sub == nil {
		apierror.Respond(w, r, apierror.NotFound("subcategory"))
		return
	}

	items, err := a.stores.Details.ListByCategory(ctx, sub.ID)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	apierror.WriteJSON(w, http.StatusOK, projection.SubcategoryDetails(sub, items, a.storage))
}

// Projects lists the project gallery, newest first.
func (a *API) Projects(w http.ResponseWriter, r *http.Request) {
	a.serveCached(w, r, cache.KeyProjects, func(ctx context.Context) (any, error) {
		items, err := a.stores.Projects.List(ctx)
		if err != nil {
			return nil, err
		}
		return projection.Projects(items, a.storage), nil
	})
}

// WorkSteps lists the work process in step order.
func (a *API) WorkSteps(w http.ResponseWriter, r *http.Request) {
	a.serveCached(w, r, cache.KeyWorkSteps, func(ctx context.Context) (any, error) {
		items, err := a.stores.WorkSteps.List(ctx)
		if err != nil {
			return nil, err
		}
		return projection.WorkSteps(items, a.storage), nil
	})
}

// Videos lists the showcased videos, newest first.
func (a *API) Videos(w http.ResponseWriter, r *http.Request) {
	a.serveCached(w, r, cache.KeyVideos, func(ctx context.Context) (any, error) {
		items, err := a.stores.Videos.List(ctx)
		if err != nil {
			return nil, err
		}
		return projection.Videos(items, a.storage), nil
	})
}

// Highlights lists the active "why choose us" points.
func (a *API) Highlights(w http.ResponseWriter, r *http.Request) {
	a.serveCached(w, r, cache.KeyHighlights, func(ctx context.Context) (any, error) {
		items, err := a.stores.Highlights.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		return projection.Highlights(items), nil
	})
}

// Reviews lists published client reviews, newest first.
func (a *API) Reviews(w http.ResponseWriter, r *http.Request) {
	a.serveCached(w, r, cache.KeyReviews, func(ctx context.Context) (any, error) {
		items, err := a.stores.Reviews.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		return projection.Reviews(items), nil
	})
}

// IncrementViews bumps the view counter of ?id= by one.
func (a *API) IncrementViews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := queryID(r, "id", "video")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	video, err := a.stores.Videos.IncrementViews(ctx, id)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if video == nil {
		apierror.Respond(w, r, apierror.NotFound("video"))
		return
	}
	a.cache.Invalidate(ctx, cache.KeyVideos)

	apierror.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Views incremented",
		"video":   projection.VideoOf(video, a.storage),
	})
}

// Rating is a json.Number so that a numeric string such as "5" is accepted
// alongside 5.
type reviewRequest struct {
	FullName string      `json:"full_name" validate:"required,max=255"`
	Comment  string      `json:"comment" validate:"required"`
	Rating   json.Number `json:"rating" validate:"required,integer,rating"`
}

func (req *reviewRequest) normalize() {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Comment = strings.TrimSpace(req.Comment)
}

// CreateReview accepts a testimonial. Submissions are stored hidden until
// an admin publishes them.
func (a *API) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierror.Respond(w, r, err)
		return
	}
	req.normalize()
	if err := validateRequest(&req); err != nil {
		apierror.Respond(w, r, err)
		return
	}

	rating, _ := strconv.Atoi(string(req.Rating))
	review, err := a.stores.Reviews.Submit(r.Context(), req.FullName, req.Comment, rating)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	apierror.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Review submitted successfully and will be published after moderation",
		"review":  projection.ReviewOf(review),
	})
}

type callbackRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Phone string `json:"phone" validate:"required,max=20,phone"`
}

func (req *callbackRequest) normalize() {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
}

// CreateCallback records a request to be called back.
func (a *API) CreateCallback(w http.ResponseWriter, r *http.Request) {
	var req callbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierror.Respond(w, r, err)
		return
	}
	req.normalize()
	if err := validateRequest(&req); err != nil {
		apierror.Respond(w, r, err)
		return
	}

	cb, err := a.stores.Callbacks.Create(r.Context(), req.Name, req.Phone)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	apierror.WriteJSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"message":  "Request sent successfully! We will contact you shortly",
		"callback": projection.CallbackOf(cb),
	})
}

// serveCached answers from the response cache or runs load and caches
// its encoded result.
func (a *API) serveCached(w http.ResponseWriter, r *http.Request, key string, load func(ctx context.Context) (any, error)) {
	ctx := r.Context()

	if e, ok := a.cache.Get(ctx, key); ok {
		writeEntry(w, e)
		return
	}
	gen, genErr := a.cache.Generation(ctx)

	body, err := load(ctx)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	e, err := newEntry(body)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if genErr == nil {
		a.cache.SetIfCurrent(ctx, key, e, gen)
	}
	writeEntry(w, e)
}

func newEntry(body any) (*cache.Entry, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return &cache.Entry{Body: data}, nil
}

func writeEntry(w http.ResponseWriter, e *cache.Entry) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if e.TotalCount != "" {
		w.Header().Set("X-Total-Count", e.TotalCount)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(e.Body)
}
