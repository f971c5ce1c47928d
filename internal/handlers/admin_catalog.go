// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"pbbcms/internal/apierror"
	"pbbcms/internal/models"
	"pbbcms/internal/projection"
	"pbbcms/internal/store"
)

type mainCategoryRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	IsActive *bool  `json:"is_active"`
}

type subcategoryRequest struct {
	Name     string     `json:"name" validate:"required,max=255"`
	ParentID *uuid.UUID `json:"parent_id" validate:"required"`
	IsActive *bool      `json:"is_active"`
}

type detailOrderRequest struct {
	Order *int `json:"order" validate:"required"`
}

// activeOrDefault treats an omitted is_active as true.
func activeOrDefault(v *bool) bool {
	return v == nil || *v
}

var errParentChoice = apierror.Field("parent_id", "Select a valid main category.")

// --- Main categories ---

// MainCategoriesList returns a page of main categories.
func (a *Admin) MainCategoriesList(w http.ResponseWriter, r *http.Request) {
	a.listCategories(w, r, false)
}

// MainCategoryCreate adds a main category.
func (a *Admin) MainCategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req mainCategoryRequest
	if err := a.decodeCategory(w, r, &req, &req.Name); err != nil {
		apierror.Respond(w, r, err)
		return
	}

	c, err := a.stores.Categories.CreateMain(r.Context(), req.Name, activeOrDefault(req.IsActive))
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	a.cache.InvalidateCategories(r.Context())
	apierror.WriteJSON(w, http.StatusCreated, c)
}

// MainCategoryUpdate renames or (de)activates a main category.
func (a *Admin) MainCategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "main category")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	var req mainCategoryRequest
	if err := a.decodeCategory(w, r, &req, &req.Name); err != nil {
		apierror.Respond(w, r, err)
		return
	}

	c, err := a.stores.Categories.UpdateMain(r.Context(), id, req.Name, activeOrDefault(req.IsActive))
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if c == nil {
		apierror.Respond(w, r, apierror.NotFound("main category"))
		return
	}
	a.cache.InvalidateCategories(r.Context())
	apierror.WriteJSON(w, http.StatusOK, c)
}

// MainCategoryDelete removes a main category with its subcategories and
// their galleries.
func (a *Admin) MainCategoryDelete(w http.ResponseWriter, r *http.Request) {
	a.deleteCategory(w, r, false)
}

// --- Subcategories ---

// SubcategoriesList returns a page of subcategories, optionally limited to
// one parent with ?parent_id=.
func (a *Admin) SubcategoriesList(w http.ResponseWriter, r *http.Request) {
	a.listCategories(w, r, true)
}

// ParentChoices lists the categories a subcategory may be attached to.
func (a *Admin) ParentChoices(w http.ResponseWriter, r *http.Request) {
	items, err := a.stores.Categories.ParentChoices(r.Context())
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if items == nil {
		items = []models.Category{}
	}
	apierror.WriteJSON(w, http.StatusOK, items)
}

// SubcategoryCreate adds a subcategory under a main category.
func (a *Admin) SubcategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req subcategoryRequest
	if err := a.decodeCategory(w, r, &req, &req.Name); err != nil {
		apierror.Respond(w, r, err)
		return
	}

	c, err := a.stores.Categories.CreateSub(r.Context(), *req.ParentID, req.Name, activeOrDefault(req.IsActive))
	if errors.Is(err, store.ErrInvalidParent) {
		apierror.Respond(w, r, errParentChoice)
		return
	}
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	a.cache.InvalidateCategories(r.Context())
	apierror.WriteJSON(w, http.StatusCreated, c)
}

// SubcategoryUpdate edits a subcategory, possibly moving it to another
// main category.
func (a *Admin) SubcategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "subcategory")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	var req subcategoryRequest
	if err := a.decodeCategory(w, r, &req, &req.Name); err != nil {
		apierror.Respond(w, r, err)
		return
	}

	c, err := a.stores.Categories.UpdateSub(r.Context(), id, *req.ParentID, req.Name, activeOrDefault(req.IsActive))
	if errors.Is(err, store.ErrInvalidParent) {
		apierror.Respond(w, r, errParentChoice)
		return
	}
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if c == nil {
		apierror.Respond(w, r, apierror.NotFound("subcategory"))
		return
	}
	a.cache.InvalidateCategories(r.Context())
	apierror.WriteJSON(w, http.StatusOK, c)
}

// SubcategoryDelete removes a subcategory and its gallery.
func (a *Admin) SubcategoryDelete(w http.ResponseWriter, r *http.Request) {
	a.deleteCategory(w, r, true)
}

// --- Service details ---

// DetailsList returns the gallery of a subcategory in display order.
func (a *Admin) DetailsList(w http.ResponseWriter, r *http.Request) {
	sub, err := a.subcategory(r)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	items, err := a.stores.Details.ListByCategory(r.Context(), sub.ID)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	apierror.WriteJSON(w, http.StatusOK, projection.ServiceDetails(items, a.storage))
}

// DetailCreate uploads an image into a subcategory gallery. The multipart
// form carries "image" and an optional "order".
func (a *Admin) DetailCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sub, err := a.subcategory(r)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if err := parseUpload(w, r); err != nil {
		apierror.Respond(w, r, err)
		return
	}

	order, err := formInt(r, "order")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if order == nil {
		order = new(int)
	}

	img, err := requireImage(r, "image")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	key, err := a.upload(ctx, folderServiceDetails, img)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	d, err := a.stores.Details.Create(ctx, sub.ID, key, *order)
	if err != nil {
		a.storage.Discard(ctx, key)
		apierror.Respond(w, r, err)
		return
	}
	a.cache.InvalidateCategories(ctx)
	apierror.WriteJSON(w, http.StatusCreated, projection.ServiceDetails([]models.ServiceDetail{*d}, a.storage)[0])
}

// DetailUpdate changes the display position of a gallery image.
func (a *Admin) DetailUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "service detail")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	var req detailOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		apierror.Respond(w, r, err)
		return
	}

	d, err := a.stores.Details.UpdateOrder(r.Context(), id, *req.Order)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if d == nil {
		apierror.Respond(w, r, apierror.NotFound("service detail"))
		return
	}
	a.cache.InvalidateCategories(r.Context())
	apierror.WriteJSON(w, http.StatusOK, projection.ServiceDetails([]models.ServiceDetail{*d}, a.storage)[0])
}

// DetailDelete removes a gallery image and its stored object.
func (a *Admin) DetailDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "service detail")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	d, err := a.stores.Details.Delete(ctx, id)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if d == nil {
		apierror.Respond(w, r, apierror.NotFound("service detail"))
		return
	}
	a.storage.Discard(ctx, d.Image)
	a.cache.InvalidateCategories(ctx)
	w.WriteHeader(http.StatusNoContent)
}

// --- helpers ---

// decodeCategory decodes and validates a category body. name points at the
// request's Name so it can be trimmed before validation.
func (a *Admin) decodeCategory(w http.ResponseWriter, r *http.Request, req any, name *string) error {
	if err := decodeJSON(w, r, req); err != nil {
		return err
	}
	*name = strings.TrimSpace(*name)
	return validateRequest(req)
}

func (a *Admin) listCategories(w http.ResponseWriter, r *http.Request, subcategories bool) {
	page, err := queryPage(r)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	isActive, err := queryBool(r, "is_active")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	filter := store.CategoryFilter{
		Subcategories: subcategories,
		Search:        strings.TrimSpace(r.URL.Query().Get("search")),
		IsActive:      isActive,
		Page:          page,
	}
	if subcategories {
		if raw := r.URL.Query().Get("parent_id"); raw != "" {
			parentID, err := uuid.Parse(raw)
			if err != nil {
				apierror.Respond(w, r, apierror.BadRequest("invalid parent_id"))
				return
			}
			filter.ParentID = &parentID
		}
	}

	items, total, err := a.stores.Categories.AdminList(r.Context(), filter)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	apierror.WriteJSON(w, http.StatusOK, paged(items, total, page))
}

// deleteCategory removes a category of the given kind. Image objects of
// every cascaded gallery row are discarded after the delete commits.
func (a *Admin) deleteCategory(w http.ResponseWriter, r *http.Request, subcategory bool) {
	ctx := r.Context()

	what := "main category"
	if subcategory {
		what = "subcategory"
	}

	id, err := pathID(r, what)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	c, err := a.stores.Categories.FindByID(ctx, id)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if c == nil || c.IsSubcategory() != subcategory {
		apierror.Respond(w, r, apierror.NotFound(what))
		return
	}

	keys, err := a.stores.Details.ImageKeysUnder(ctx, id)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	deleted, err := a.stores.Categories.Delete(ctx, id)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if deleted == nil {
		apierror.Respond(w, r, apierror.NotFound(what))
		return
	}

	a.storage.Discard(ctx, keys...)
	a.cache.InvalidateCategories(ctx)
	w.WriteHeader(http.StatusNoContent)
}

// subcategory loads the {id} subcategory for the nested gallery routes.
func (a *Admin) subcategory(r *http.Request) (*models.Category, error) {
	id, err := pathID(r, "subcategory")
	if err != nil {
		return nil, err
	}
	c, err := a.stores.Categories.FindByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if c == nil || !c.IsSubcategory() {
		return nil, apierror.NotFound("subcategory")
	}
	return c, nil
}
