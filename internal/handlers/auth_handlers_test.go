package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avagyan/atelier_orders/internal/hash"
	"github.com/avagyan/atelier_orders/internal/models"
	"github.com/avagyan/atelier_orders/internal/mykafka"
)

var testSecret = []byte("test_secret")

func InitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Order{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newAuthHandler(t *testing.T) (*AuthHandler, *gorm.DB) {
	db := InitTestDB(t)
	return &AuthHandler{
		DB:        db,
		JWTSecret: testSecret,
		Producer:  &mykafka.Producer{},
	}, db
}

func doJSONRequest(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	e := echo.New()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, c
}

func registerUser(t *testing.T, h *AuthHandler, email string) models.User {
	t.Helper()
	payload := map[string]string{
		"username": "test_user",
		"email":    email,
		"phone":    "+37455123456",
		"location": "Armenia",
		"password": "password",
	}
	rec, c := doJSONRequest(t, http.MethodPost, "/api/auth/register", payload)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		User models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.User
}

func TestRegister(t *testing.T) {
	h, db := newAuthHandler(t)

	payload := map[string]string{
		"username": "test_user",
		"email":    "a@x.com",
		"phone":    "+79161234567",
		"location": "Russia",
		"password": "password",
	}
	rec, c := doJSONRequest(t, http.MethodPost, "/api/auth/register", payload)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Message string      `json:"message"`
		User    models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Registration successful", resp.Message)
	require.NotEmpty(t, resp.User.ID)
	require.Equal(t, "a@x.com", resp.User.Email)

	// the credential hash must never appear in the payload
	require.NotContains(t, rec.Body.String(), "password")
	require.NotContains(t, rec.Body.String(), "$2a$")

	var stored models.User
	require.NoError(t, db.First(&stored, resp.User.ID).Error)
	require.NotEqual(t, "password", stored.PasswordHash)
	require.True(t, hash.CheckPassword(stored.PasswordHash, "password"))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, _ := newAuthHandler(t)
	registerUser(t, h, "a@x.com")

	payload := map[string]string{
		"username": "someone_else",
		"email":    "a@x.com",
		"password": "other_password",
	}
	_, c := doJSONRequest(t, http.MethodPost, "/api/auth/register", payload)
	err := h.Register(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)
	require.Equal(t, "Email already registered", he.Message)
}

func TestLogin(t *testing.T) {
	h, _ := newAuthHandler(t)
	user := registerUser(t, h, "a@x.com")

	rec, c := doJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "password",
	})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])

	token, err := jwt.Parse(resp["token"], func(t *jwt.Token) (interface{}, error) {
		return testSecret, nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	require.Equal(t, float64(user.ID), claims["id"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp.Time, time.Minute)
}

func TestLoginFailureMessagesMatch(t *testing.T) {
	h, _ := newAuthHandler(t)
	registerUser(t, h, "a@x.com")

	_, cWrongPass := doJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "not the password",
	})
	errWrongPass := h.Login(cWrongPass)

	_, cUnknown := doJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "nobody@x.com",
		"password": "password",
	})
	errUnknown := h.Login(cUnknown)

	heWrongPass, ok := errWrongPass.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	heUnknown, ok := errUnknown.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")

	require.Equal(t, http.StatusBadRequest, heWrongPass.Code)
	require.Equal(t, heWrongPass.Code, heUnknown.Code)
	require.Equal(t, heWrongPass.Message, heUnknown.Message)
}

func TestProfile(t *testing.T) {
	h, _ := newAuthHandler(t)
	user := registerUser(t, h, "a@x.com")

	rec, c := doJSONRequest(t, http.MethodGet, "/api/auth/profile", nil)
	c.Set("userID", user.ID)
	require.NoError(t, h.Profile(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "a@x.com", resp["email"])
	require.Equal(t, "test_user", resp["username"])
	require.NotContains(t, resp, "password")

	_, cGone := doJSONRequest(t, http.MethodGet, "/api/auth/profile", nil)
	cGone.Set("userID", uint(9999))
	err := h.Profile(cGone)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusNotFound, he.Code)
}

func TestUpdateProfile(t *testing.T) {
	h, db := newAuthHandler(t)
	user := registerUser(t, h, "a@x.com")

	rec, c := doJSONRequest(t, http.MethodPut, "/api/auth/update-profile", map[string]string{
		"username": "renamed",
		"phone":    "+37499000000",
		"location": "Armenia",
	})
	c.Set("userID", user.ID)
	require.NoError(t, h.UpdateProfile(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	require.Equal(t, "renamed", stored.Username)
	require.Equal(t, "+37499000000", stored.Phone)
	// password untouched when no newPassword is sent
	require.True(t, hash.CheckPassword(stored.PasswordHash, "password"))
}

func TestUpdateProfilePasswordChange(t *testing.T) {
	h, db := newAuthHandler(t)
	user := registerUser(t, h, "a@x.com")

	_, cBad := doJSONRequest(t, http.MethodPut, "/api/auth/update-profile", map[string]string{
		"username":        "test_user",
		"currentPassword": "wrong",
		"newPassword":     "new_password",
	})
	cBad.Set("userID", user.ID)
	err := h.UpdateProfile(cBad)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)
	require.Equal(t, "Incorrect current password", he.Message)

	rec, cGood := doJSONRequest(t, http.MethodPut, "/api/auth/update-profile", map[string]string{
		"username":        "test_user",
		"currentPassword": "password",
		"newPassword":     "new_password",
	})
	cGood.Set("userID", user.ID)
	require.NoError(t, h.UpdateProfile(cGood))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	require.True(t, hash.CheckPassword(stored.PasswordHash, "new_password"))
	require.False(t, hash.CheckPassword(stored.PasswordHash, "password"))
	require.False(t, strings.Contains(rec.Body.String(), stored.PasswordHash))
}
