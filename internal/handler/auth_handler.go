package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/tutoring-scheduler/internal/dto"
	"github.com/noah-isme/tutoring-scheduler/internal/models"
	appErrors "github.com/noah-isme/tutoring-scheduler/pkg/errors"
	"github.com/noah-isme/tutoring-scheduler/pkg/response"
)

type tokenIssuer interface {
	Issue(userID, fullName string, role models.Role) (string, time.Time, error)
}

// AuthHandler issues operator tokens. It is only routed outside production.
type AuthHandler struct {
	issuer   tokenIssuer
	validate *validator.Validate
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(issuer tokenIssuer) *AuthHandler {
	return &AuthHandler{issuer: issuer, validate: validator.New()}
}

// IssueToken godoc
// @Summary Issue an operator token (non-production)
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.IssueTokenRequest true "Operator identity"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/token [post]
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req dto.IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid token payload"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid token payload"))
		return
	}

	token, expiresAt, err := h.issuer.Issue(req.UserID, req.FullName, req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, dto.IssueTokenResponse{AccessToken: token, ExpiresAt: expiresAt}, nil)
}
