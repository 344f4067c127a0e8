// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/olegiv/campusvoice/internal/imaging"
	"github.com/olegiv/campusvoice/internal/middleware"
)

// maxMultipartBody leaves room for the form envelope around a 5 MiB image.
const maxMultipartBody = imaging.MaxUploadSize + 1<<20

// readUpload parses the multipart "file" field. The caller must call
// cleanup once the upload has been ingested. On failure the response has
// been written.
func readUpload(w http.ResponseWriter, r *http.Request) (u imaging.Upload, cleanup func(), ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBody)
	if err := r.ParseMultipartForm(maxMultipartBody); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.WriteAPIError(w, http.StatusRequestEntityTooLarge, "too_large", imaging.ErrTooLarge.Error(), nil)
			return u, nil, false
		}
		WriteBadRequest(w, "Failed to parse multipart form")
		return u, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "No file provided. Use the 'file' field")
		return u, nil, false
	}
	cleanup = func() {
		_ = file.Close()
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}
	return uploadFromHeader(file, header), cleanup, true
}

func uploadFromHeader(file multipart.File, header *multipart.FileHeader) imaging.Upload {
	return imaging.Upload{
		Filename:  header.Filename,
		MediaType: header.Header.Get("Content-Type"),
		Size:      header.Size,
		Body:      file,
	}
}

// UploadImage handles POST /admin/api/media/images. It stores the image and
// returns its reference without touching any post.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	u, cleanup, ok := readUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	ref, err := h.images.Ingest(r.Context(), u)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.logger.Info("image uploaded",
		"category", "media",
		"user_id", middleware.GetUserID(r),
		"strategy", ref.Strategy,
		"fallback", ref.Fallback,
		"size", ref.Size)
	WriteCreated(w, ref)
}
