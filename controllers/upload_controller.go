package controllers

import (
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/smartassist/smartassist-api/utils"
)

// GetUploadedImage handles GET /api/uploads/:filename and serves a photo saved
// by the local image store. The type comes from the stored bytes, not the name.
func (h *Handler) GetUploadedImage(c *gin.Context) {
	filename := c.Param("filename")
	if filename == "" || strings.HasPrefix(filename, ".") || utils.SanitizeFilename(filename) != filename {
		respondError(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	path := filepath.Join(h.Config.UploadDir, filename)
	mtype, err := mimetype.DetectFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found")
		return
	case err != nil:
		respondError(c, http.StatusInternalServerError, "FILE_READ_ERROR", "Failed to read image")
		return
	case !strings.HasPrefix(mtype.String(), "image/") || mtype.Is("image/svg+xml"):
		respondError(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only image files are supported")
		return
	}

	c.Header("Content-Type", mtype.String())
	c.Header("Cache-Control", "private, max-age=86400")
	c.Header("X-Content-Type-Options", "nosniff")
	c.File(path)
}
