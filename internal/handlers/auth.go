package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avagyan/atelier_orders/internal/hash"
	"github.com/avagyan/atelier_orders/internal/models"
	"github.com/avagyan/atelier_orders/internal/mykafka"
)

const tokenTTL = time.Hour

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
	Producer  *mykafka.Producer
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Location string `json:"location"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var existing models.User
	result := h.DB.Where("email = ?", req.Email).First(&existing)
	if result.Error == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Email already registered")
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		Location:     req.Location,
		PasswordHash: hashed,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]interface{}{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Registration successful",
		"user":    user,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	// The unknown-email and wrong-password paths must answer with the
	// same message.
	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "Incorrect email or password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusBadRequest, "Incorrect email or password")
	}

	claims := jwt.MapClaims{
		"id":  user.ID,
		"exp": time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.JWTSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]interface{}{
		"type":   "user_logged_in",
		"userID": user.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login completed",
		"token":   signed,
	})
}

func (h *AuthHandler) Profile(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	var req struct {
		Username        string `json:"username"`
		Phone           string `json:"phone"`
		Location        string `json:"location"`
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	// Current password is re-verified only when a new one is supplied.
	if req.NewPassword != "" {
		if !hash.CheckPassword(user.PasswordHash, req.CurrentPassword) {
			return echo.NewHTTPError(http.StatusBadRequest, "Incorrect current password")
		}
		hashed, err := hash.HashPassword(req.NewPassword)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
		}
		user.PasswordHash = hashed
	}

	user.Username = req.Username
	user.Phone = req.Phone
	user.Location = req.Location

	if err := h.DB.Save(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profile updated successfully",
		"user":    user,
	})
}
