package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"imagify/internal/errors"
	"imagify/internal/service"
)

// ImageHandler handles image generation endpoints.
type ImageHandler struct {
	imageService service.ImageService
}

// NewImageHandler creates a new image handler.
func NewImageHandler(imageService service.ImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

// GenerateRequest represents an image generation request.
type GenerateRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

// GenerateResponse represents a generated image and the remaining balance.
type GenerateResponse struct {
	Image         string `json:"image"`
	CreditBalance int64  `json:"credit_balance"`
}

// Generate godoc
// @Summary Generate an image from a prompt
// @Description Spends one credit and returns the generated image as a data URL.
// @Tags image
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GenerateRequest true "Prompt"
// @Success 200 {object} GenerateResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 402 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /image/generations [post]
func (h *ImageHandler) Generate(c echo.Context) error {
	userID, err := userIDFromToken(c)
	if err != nil {
		return err
	}

	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	image, remaining, err := h.imageService.Generate(c.Request().Context(), userID, req.Prompt)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, GenerateResponse{
		Image:         image,
		CreditBalance: remaining,
	})
}
