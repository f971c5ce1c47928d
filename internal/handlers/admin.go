// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"pbbcms/internal/apierror"
	"pbbcms/internal/cache"
	"pbbcms/internal/storage"
)

// Object storage folders per content kind.
const (
	folderProjects       = "projects"
	folderWorkSteps      = "work_steps"
	folderVideos         = "videos"
	folderServiceDetails = "service_details"
)

// maxFormMemory bounds the in-memory part of a multipart upload.
const maxFormMemory = 1 << 20

const msgInteger = "A valid integer is required."

// Admin groups the admin JSON API handlers and their dependencies.
type Admin struct {
	stores  Stores
	storage *storage.Client
	cache   *cache.ResponseCache
}

// NewAdmin creates a new Admin handler group. storageClient may be nil if
// S3 is not configured, in which case uploads answer 503.
func NewAdmin(stores Stores, storageClient *storage.Client, responseCache *cache.ResponseCache) *Admin {
	return &Admin{
		stores:  stores,
		storage: storageClient,
		cache:   responseCache,
	}
}

// parseUpload parses a multipart body no larger than one image plus
// ordinary fields.
func parseUpload(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxImageSize+maxFormMemory)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apierror.Field("image", storage.ErrImageTooLarge.Error())
		}
		return apierror.BadRequest("invalid multipart form")
	}
	return nil
}

// formInt reads an optional integer form field. It returns nil when the
// field is empty.
func formInt(r *http.Request, field string) (*int, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apierror.Field(field, msgInteger)
	}
	return &n, nil
}

// imageFile is a validated upload waiting to be stored.
type imageFile struct {
	data        []byte
	contentType string
	ext         string
}

// formImage reads and validates the named file field. It returns nil when
// the field is absent.
func formImage(r *http.Request, field string) (*imageFile, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apierror.BadRequest("invalid multipart form")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxImageSize+1))
	if err != nil {
		return nil, apierror.BadRequest("could not read " + field)
	}

	contentType, ext, err := storage.DetectImage(data)
	if err != nil {
		return nil, apierror.Field(field, err.Error())
	}
	return &imageFile{data: data, contentType: contentType, ext: ext}, nil
}

// requireImage is formImage for mandatory fields.
func requireImage(r *http.Request, field string) (*imageFile, error) {
	img, err := formImage(r, field)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, apierror.Field(field, "No file was submitted.")
	}
	return img, nil
}

// upload stores img under folder and returns its object key.
func (a *Admin) upload(ctx context.Context, folder string, img *imageFile) (string, error) {
	if a.storage == nil {
		return "", apierror.Unavailable("object storage is not configured")
	}
	key := storage.ObjectKey(folder, img.ext)
	if err := a.storage.Upload(ctx, key, img.contentType, bytes.NewReader(img.data), int64(len(img.data))); err != nil {
		return "", err
	}
	return key, nil
}
