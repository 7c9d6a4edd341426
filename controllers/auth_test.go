package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"fieldpro-backend/models"
	"fieldpro-backend/routes"
	"fieldpro-backend/utils"
)

func TestRegisterAndLogin(t *testing.T) {
	setupTestDB(t)
	r := routes.SetupRouter()

	w := doRequest(t, r, http.MethodPost, "/auth/register", "", map[string]interface{}{
		"email":        "owner@example.com",
		"password":     "Sunshine1",
		"name":         "Alex Owner",
		"businessName": "Alex Lawn Care",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	decodeBody(t, w, &created)
	if created.Token == "" {
		t.Errorf("expected a token in register response")
	}
	if created.User.Email != "owner@example.com" {
		t.Errorf("unexpected email %q", created.User.Email)
	}

	w = doRequest(t, r, http.MethodPost, "/auth/login", "", map[string]interface{}{
		"email":    "owner@example.com",
		"password": "Sunshine1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on login, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(t, r, http.MethodPost, "/auth/login", "", map[string]interface{}{
		"email":    "owner@example.com",
		"password": "WrongPass1",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 on bad password, got %d", w.Code)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	setupTestDB(t)
	r := routes.SetupRouter()

	for _, password := range []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"} {
		w := doRequest(t, r, http.MethodPost, "/auth/register", "", map[string]interface{}{
			"email":    "weak@example.com",
			"password": password,
			"name":     "Weak Password",
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("password %q: expected 400, got %d", password, w.Code)
		}
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	user, _ := seedUser(t, db)
	r := routes.SetupRouter()

	w := doRequest(t, r, http.MethodPost, "/auth/register", "", map[string]interface{}{
		"email":    user.Email,
		"password": "Sunshine1",
		"name":     "Duplicate",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMeReturnsCurrentUser(t *testing.T) {
	db := setupTestDB(t)
	user, token := seedUser(t, db)
	r := routes.SetupRouter()

	w := doRequest(t, r, http.MethodGet, "/auth/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	decodeBody(t, w, &body)
	if body.User.Email != user.Email {
		t.Errorf("expected %q, got %q", user.Email, body.User.Email)
	}

	w = doRequest(t, r, http.MethodGet, "/auth/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
}

func TestResetPasswordFlow(t *testing.T) {
	db := setupTestDB(t)
	user, _ := seedUser(t, db)
	r := routes.SetupRouter()

	w := doRequest(t, r, http.MethodPost, "/auth/forgot-password", "", map[string]interface{}{
		"email": user.Email,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Unknown email gets the same response so registration can't be probed
	w = doRequest(t, r, http.MethodPost, "/auth/forgot-password", "", map[string]interface{}{
		"email": "nobody@example.com",
	})
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for unknown email, got %d", w.Code)
	}

	var reset models.PasswordReset
	if err := db.Where("user_id = ?", user.ID).First(&reset).Error; err != nil {
		t.Fatalf("load reset token: %v", err)
	}

	w = doRequest(t, r, http.MethodPost, "/auth/reset-password", "", map[string]interface{}{
		"token":    reset.Token,
		"password": "Brandnew1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded models.User
	if err := db.First(&reloaded, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !utils.CheckPasswordHash("Brandnew1", reloaded.Password) {
		t.Errorf("new password does not verify")
	}

	// Token is single use
	w = doRequest(t, r, http.MethodPost, "/auth/reset-password", "", map[string]interface{}{
		"token":    reset.Token,
		"password": "Another1x",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 on reused token, got %d", w.Code)
	}
}

func TestResetPasswordRejectsExpiredToken(t *testing.T) {
	db := setupTestDB(t)
	user, _ := seedUser(t, db)
	reset := models.PasswordReset{
		UserID:    user.ID,
		Token:     utils.GenerateResetToken(),
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	if err := db.Create(&reset).Error; err != nil {
		t.Fatalf("seed reset: %v", err)
	}
	r := routes.SetupRouter()

	w := doRequest(t, r, http.MethodPost, "/auth/reset-password", "", map[string]interface{}{
		"token":    reset.Token,
		"password": "Brandnew1",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 on expired token, got %d", w.Code)
	}
}
