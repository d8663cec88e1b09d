package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"imagify/internal/errors"
	"imagify/internal/service"
)

// UserHandler handles user account endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreditsResponse represents a credit balance response.
type CreditsResponse struct {
	Credits int64  `json:"credits"`
	Name    string `json:"name"`
}

// Credits godoc
// @Summary Get the authenticated user's credit balance
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CreditsResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /user/credits [get]
func (h *UserHandler) Credits(c echo.Context) error {
	userID, err := userIDFromToken(c)
	if err != nil {
		return err
	}

	user, err := h.userService.Credits(c.Request().Context(), userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, CreditsResponse{
		Credits: user.CreditBalance,
		Name:    user.Name,
	})
}
