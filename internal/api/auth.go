package api

import (
	"errors"
	"net/http"
	"strings"

	"storefront/internal/upstream"
	"storefront/internal/validate"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	resp, err := h.client.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	sess := h.sessions.Get(c.Request.Context(), sessionID(c))
	sess.Login(c.Request.Context(), resp.JWT, resp.User)

	c.JSON(http.StatusOK, gin.H{"user": resp.User})
}

type registerRequest struct {
	Username             string `json:"username" binding:"required"`
	Email                string `json:"email" binding:"required"`
	Password             string `json:"password" binding:"required"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required"`
	Phone                string `json:"phone"`
	TaxID                string `json:"cpf"`
	Street               string `json:"street"`
	Number               string `json:"number"`
	Complement           string `json:"complement"`
	City                 string `json:"city"`
	State                string `json:"state"`
}

// address assembles the postal fields into the single string the backend
// stores, the same shape the web client submitted.
func (r registerRequest) address() string {
	if r.Street == "" {
		return ""
	}
	addr := r.Street + ", " + r.Number
	if r.Complement != "" {
		addr += " - " + r.Complement
	}
	if r.City != "" || r.State != "" {
		addr += " - " + r.City + "/" + r.State
	}
	return addr
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	// Pre-flight validation, before any upstream call.
	if err := validate.Password(req.Password, req.PasswordConfirmation); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TaxID != "" {
		if err := validate.CPF(req.TaxID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Phone != "" {
		if err := validate.Phone(req.Phone); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	resp, err := h.client.Register(c.Request.Context(), upstream.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.address(),
	})
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	user := resp.User

	// Extended profile fields are attached with a follow-up update; the
	// registration endpoint only accepts the base fields.
	if req.TaxID != "" {
		updated, err := h.client.UpdateUser(c.Request.Context(), resp.JWT, user.ID, upstream.UpdateProfileRequest{
			TaxID: strings.TrimSpace(req.TaxID),
		})
		if err == nil {
			user = *updated
		}
	}

	sess := h.sessions.Get(c.Request.Context(), sessionID(c))
	sess.Login(c.Request.Context(), resp.JWT, user)

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *Handler) logout(c *gin.Context) {
	sess := h.sessions.Get(c.Request.Context(), sessionID(c))
	sess.Logout(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *Handler) me(c *gin.Context) {
	sess := h.sessions.Get(c.Request.Context(), sessionID(c))
	user, ok := sess.User()
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated", "redirect": "/login"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type profileRequest struct {
	FullName string `json:"full_name"`
	TaxID    string `json:"cpf"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func (h *Handler) updateProfile(c *gin.Context) {
	sess := h.sessions.Get(c.Request.Context(), sessionID(c))
	user, ok := sess.User()
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated", "redirect": "/login"})
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.TaxID != "" {
		if err := validate.CPF(req.TaxID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Phone != "" {
		if err := validate.Phone(req.Phone); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	updated, err := h.client.UpdateUser(c.Request.Context(), sess.Token(), user.ID, upstream.UpdateProfileRequest{
		FullName: req.FullName,
		TaxID:    req.TaxID,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	sess.UpdateUser(c.Request.Context(), *updated)
	c.JSON(http.StatusOK, gin.H{"user": updated})
}

func (h *Handler) confirmEmail(c *gin.Context) {
	code := c.Query("confirmation")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing confirmation code"})
		return
	}

	if err := h.client.ConfirmEmail(c.Request.Context(), code); err != nil {
		respondUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"confirmed": true})
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.client.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true})
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req struct {
		Code                 string `json:"code" binding:"required"`
		Password             string `json:"password" binding:"required"`
		PasswordConfirmation string `json:"password_confirmation" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := validate.Password(req.Password, req.PasswordConfirmation); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.client.ResetPassword(c.Request.Context(), req.Code, req.Password, req.PasswordConfirmation)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	sess := h.sessions.Get(c.Request.Context(), sessionID(c))
	sess.Login(c.Request.Context(), resp.JWT, resp.User)
	c.JSON(http.StatusOK, gin.H{"user": resp.User})
}

// respondUpstreamError maps a backend rejection to its status and a
// user-facing message; transport failures become a 502 with a generic
// connectivity message.
func respondUpstreamError(c *gin.Context, err error) {
	status := http.StatusBadGateway
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status <= 599 {
		status = apiErr.Status
	}
	c.JSON(status, gin.H{"error": upstream.FriendlyMessage(err)})
}
