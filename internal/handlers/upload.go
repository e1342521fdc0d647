package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
)

// UploadFieldName is the multipart field the storefront posts its image under.
const UploadFieldName = "product"

type UploadHandler struct {
	Dir       string
	PublicURL string
}

func (h *UploadHandler) Upload(c echo.Context) error {
	file, err := c.FormFile(UploadFieldName)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": 0, "errors": "missing file"})
	}

	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}
	defer src.Close()

	// fieldname_millis keeps names collision-free within a millisecond, same
	// scheme the storefront's existing image URLs follow.
	name := fmt.Sprintf("%s_%d%s", UploadFieldName, time.Now().UnixMilli(), filepath.Ext(file.Filename))

	dst, err := os.Create(filepath.Join(h.Dir, name))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":   1,
		"image_url": fmt.Sprintf("%s/images/%s", h.PublicURL, name),
	})
}
