package handlers

import (
	"net/http"

	"pbbcms/internal/apierror"
	"pbbcms/internal/cache"
)

type activeRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type processedRequest struct {
	IsProcessed *bool `json:"is_processed" validate:"required"`
}

// ReviewsList returns a page of reviews for moderation. ?is_active=false
// shows the ones waiting for approval.
func (a *Admin) ReviewsList(w http.ResponseWriter, r *http.Request) {
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

	items, total, err := a.stores.Reviews.Paged(r.Context(), isActive, page)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	apierror.WriteJSON(w, http.StatusOK, paged(items, total, page))
}

// ReviewSetActive publishes or hides a review.
func (a *Admin) ReviewSetActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "review")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	var req activeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		apierror.Respond(w, r, err)
		return
	}

	rv, err := a.stores.Reviews.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if rv == nil {
		apierror.Respond(w, r, apierror.NotFound("review"))
		return
	}
	a.cache.Invalidate(r.Context(), cache.KeyReviews)
	apierror.WriteJSON(w, http.StatusOK, rv)
}

// ReviewDelete removes a review.
func (a *Admin) ReviewDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "review")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	ok, err := a.stores.Reviews.Delete(r.Context(), id)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if !ok {
		apierror.Respond(w, r, apierror.NotFound("review"))
		return
	}
	a.cache.Invalidate(r.Context(), cache.KeyReviews)
	w.WriteHeader(http.StatusNoContent)
}

// CallbacksList returns a page of callback requests, newest first.
func (a *Admin) CallbacksList(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	isProcessed, err := queryBool(r, "is_processed")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	items, total, err := a.stores.Callbacks.Paged(r.Context(), isProcessed, page)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	apierror.WriteJSON(w, http.StatusOK, paged(items, total, page))
}

// CallbackSetProcessed marks a callback request as handled (or not).
func (a *Admin) CallbackSetProcessed(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "callback request")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}

	var req processedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		apierror.Respond(w, r, err)
		return
	}

	cb, err := a.stores.Callbacks.SetProcessed(r.Context(), id, *req.IsProcessed)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if cb == nil {
		apierror.Respond(w, r, apierror.NotFound("callback request"))
		return
	}
	apierror.WriteJSON(w, http.StatusOK, cb)
}

// CallbackDelete removes a callback request.
func (a *Admin) CallbackDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "callback request")
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	ok, err := a.stores.Callbacks.Delete(r.Context(), id)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if !ok {
		apierror.Respond(w, r, apierror.NotFound("callback request"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
