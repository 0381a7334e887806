package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/local-services-api/internal/service"
	"github.com/iliyamo/local-services-api/internal/storage"
)

// ProfessionalHandler serves the public professional directory.
type ProfessionalHandler struct {
	Directory *service.Directory
	Images    *storage.DiskImageStore
	Log       *zap.Logger
}

func NewProfessionalHandler(d *service.Directory, images *storage.DiskImageStore, log *zap.Logger) *ProfessionalHandler {
	return &ProfessionalHandler{Directory: d, Images: images, Log: log}
}

// List handles GET /professionals?service=<type>.
func (h *ProfessionalHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Directory.ListByServiceType(ctx, c.QueryParam("service"))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /professionals/:id.
func (h *ProfessionalHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.Directory.GetByID(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Create handles POST /professionals.  The body is JSON, or multipart with
// an optional "image" file next to the profile fields.
func (h *ProfessionalHandler) Create(c echo.Context) error {
	var req service.ProfileInput
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}

	var imageRef string
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		ref, err := h.saveImage(c)
		if err != nil {
			if errors.Is(err, storage.ErrUnsupportedImage) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			}
			return respondError(c, h.Log, err)
		}
		imageRef = ref
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.Directory.Create(ctx, req, imageRef)
	if err != nil {
		if imageRef != "" {
			_ = h.Images.Remove(imageRef)
		}
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ProfessionalHandler) saveImage(c echo.Context) (string, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return h.Images.Save(f, fh.Header.Get(echo.HeaderContentType))
}
