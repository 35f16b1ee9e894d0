package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/velmark/storefront/internal/hash"
	"github.com/velmark/storefront/internal/logging"
	mwauth "github.com/velmark/storefront/internal/middleware/auth"
	"github.com/velmark/storefront/internal/models"
	"github.com/velmark/storefront/internal/mykafka"
	"github.com/velmark/storefront/internal/tokens"
)

const minPasswordLen = 6

type AuthHandler struct {
	DB       *gorm.DB
	Codec    *tokens.Codec
	Producer *mykafka.Producer
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Answer   string `json:"answer"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	// Field order is part of the contract: the first missing field decides
	// the message.
	required := []struct {
		value   string
		message string
	}{
		{req.Name, "name is required"},
		{req.Email, "email is required"},
		{req.Password, "password is required"},
		{req.Phone, "phone is required"},
		{req.Address, "address is required"},
		{req.Answer, "answer is required"},
	}
	for _, f := range required {
		if f.value == "" {
			l.Warn("register_failed", "status", 400, "reason", f.message)
			return c.JSON(http.StatusBadRequest, echo.Map{"message": f.message})
		}
	}

	var existing models.User
	err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		// A duplicate is a normal negative answer, not an error.
		l.Warn("register_failed", "status", 200, "reason", "already_registered")
		return c.JSON(http.StatusOK, echo.Map{
			"success": false,
			"message": "already registered, please login",
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("register_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: pwHash,
		Phone:    req.Phone,
		Address:  req.Address,
		Answer:   req.Answer,
		Role:     models.RoleBuyer,
	}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		l.Error("register_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publishEvent(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})

	l.Info("register_success", "status", 201, "user_id", user.ID)
	// The stored document is echoed back as-is, hashed password included.
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "user registered successfully",
		"user": echo.Map{
			"id":       user.ID,
			"name":     user.Name,
			"email":    user.Email,
			"password": user.Password,
			"phone":    user.Phone,
			"address":  user.Address,
			"role":     user.Role,
		},
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if req.Email == "" || req.Password == "" {
		l.Warn("login_failed", "status", 400, "reason", "missing_credentials")
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": "email and password are required",
		})
	}

	// Unknown email and wrong password produce the same answer on purpose.
	var user models.User
	if err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		l.Warn("login_failed", "status", 401, "reason", "invalid email or password")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if !hash.CheckPassword(user.Password, req.Password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid email or password")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	token, err := h.Codec.Sign(user.ID)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot create token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create token")
	}

	publishEvent(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
	})

	l.Info("login_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "login successful",
		"user":    user,
		"token":   token,
	})
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_forgot_password")

	var req struct {
		Email       string `json:"email"`
		Answer      string `json:"answer"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("forgot_password_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	required := []struct {
		value   string
		message string
	}{
		{req.Email, "email is required"},
		{req.Answer, "answer is required"},
		{req.NewPassword, "new password is required"},
	}
	for _, f := range required {
		if f.value == "" {
			l.Warn("forgot_password_failed", "status", 400, "reason", f.message)
			return c.JSON(http.StatusBadRequest, echo.Map{"message": f.message})
		}
	}

	var user models.User
	err := h.DB.WithContext(ctx).
		Where("email = ? AND answer = ?", req.Email, req.Answer).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("forgot_password_failed", "status", 404, "reason", "no_match")
			return c.JSON(http.StatusNotFound, echo.Map{
				"success": false,
				"message": "wrong email or answer",
			})
		}
		l.Error("forgot_password_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	pwHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		l.Error("forgot_password_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := h.DB.WithContext(ctx).Model(&user).Update("password", pwHash).Error; err != nil {
		l.Error("forgot_password_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	// No token here: the caller logs in again with the new password.
	l.Info("forgot_password_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "password reset successfully",
	})
}

type profileRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

// UpdateProfile merges: a field left out of the JSON keeps its stored
// value, an explicit empty string clears it. Pointer fields carry that
// distinction through binding.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_update_profile")

	userID := mwauth.UserID(c)

	var req profileRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("profile_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		l.Warn("profile_failed", "status", 404, "reason", "user_not_found", "user_id", userID)
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	if req.Password != nil && len(*req.Password) < minPasswordLen {
		l.Warn("profile_failed", "status", 400, "reason", "weak_password", "user_id", userID)
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "password is required and must be at least 6 characters long",
		})
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.Password != nil {
		pwHash, err := hash.HashPassword(*req.Password)
		if err != nil {
			l.Error("profile_failed", "status", 500, "reason", "cannot hash the password", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		user.Password = pwHash
	}

	if err := h.DB.WithContext(ctx).Save(&user).Error; err != nil {
		l.Error("profile_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("profile_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"message":      "profile updated successfully",
		"updated_user": user,
	})
}

// UserAuth and AdminAuth back the client-side route guards; reaching them
// means the middleware chain already passed.
func (h *AuthHandler) UserAuth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (h *AuthHandler) AdminAuth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
