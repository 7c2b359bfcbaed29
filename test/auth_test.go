package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tasktracker/internal/auth"
)

func TestRegister(t *testing.T) {
	app := CreateTestApp()

	email := fmt.Sprintf("register_%d@example.com", time.Now().UnixNano())
	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": "secret123",
	})
	req := httptest.NewRequest("POST", "/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Register request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("Expected status 201 but got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Error decoding register response: %v", err)
	}
	if result["email"] != email {
		t.Errorf("Expected email %q in response, got %v", email, result["email"])
	}
	if result["id"] == nil {
		t.Errorf("Expected user id in response")
	}
	if _, leaked := result["hashed_password"]; leaked {
		t.Errorf("Response must not contain the password hash")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := CreateTestApp()

	email := fmt.Sprintf("dup_%d@example.com", time.Now().UnixNano())
	RegisterTestUser(app, t, email, "secret123")

	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": "othersecret",
	})
	req := httptest.NewRequest("POST", "/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Register request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected status 409 for duplicate email, got %d", resp.StatusCode)
	}

	// First user still logs in with the original password
	token := LoginTestUser(app, t, email, "secret123")
	if token == "" {
		t.Errorf("Expected first user to be unaffected")
	}
}

func TestRegisterValidation(t *testing.T) {
	app := CreateTestApp()

	cases := []map[string]string{
		{"email": "not-an-email", "password": "secret123"},
		{"email": "short@example.com", "password": "abc"},
		{"password": "secret123"},
	}
	for _, reqBody := range cases {
		body, _ := json.Marshal(reqBody)
		req := httptest.NewRequest("POST", "/auth/register", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Register request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("Expected status 422 for body %v, got %d", reqBody, resp.StatusCode)
		}
	}
}

func TestLoginAndProtectedCall(t *testing.T) {
	app := CreateTestApp()

	email := fmt.Sprintf("login_%d@example.com", time.Now().UnixNano())
	RegisterTestUser(app, t, email, "password123")
	token := LoginTestUser(app, t, email, "password123")

	req := httptest.NewRequest("GET", "/tasks/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("ListTasks request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 with fresh token, got %d", resp.StatusCode)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	app := CreateTestApp()

	email := fmt.Sprintf("badcreds_%d@example.com", time.Now().UnixNano())
	RegisterTestUser(app, t, email, "password123")

	for _, reqBody := range []map[string]string{
		{"email": email, "password": "wrong-password"},
		{"email": "nobody@example.com", "password": "password123"},
	} {
		body, _ := json.Marshal(reqBody)
		req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Login request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected status 401 for %v, got %d", reqBody, resp.StatusCode)
		}
	}
}

func TestLoginWithFormBody(t *testing.T) {
	app := CreateTestApp()

	email := fmt.Sprintf("form_%d@example.com", time.Now().UnixNano())
	RegisterTestUser(app, t, email, "password123")

	// The web client posts the email under the form field "username"
	form := fmt.Sprintf("username=%s&password=password123", email)
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte(form)))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Login request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for form login, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Error decoding login response: %v", err)
	}
	if result["token_type"] != "bearer" {
		t.Errorf("Expected token_type bearer, got %v", result["token_type"])
	}
}

func TestProtectedCallWithoutToken(t *testing.T) {
	app := CreateTestApp()

	for name, header := range map[string]string{
		"missing":   "",
		"malformed": "Token abc",
		"garbage":   "Bearer not-a-real-token",
	} {
		req := httptest.NewRequest("GET", "/tasks/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected status 401 for %s token, got %d", name, resp.StatusCode)
		}
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	app := CreateTestApp()

	email := fmt.Sprintf("expired_%d@example.com", time.Now().UnixNano())
	RegisterTestUser(app, t, email, "password123")

	// Same secret as the app, but the token is already past its expiry
	expired := auth.NewTokenService(testCfg.JWTSecret, -1*time.Minute)
	token, err := expired.Issue(email)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	req := httptest.NewRequest("GET", "/tasks/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for expired token, got %d", resp.StatusCode)
	}
}

func TestTokenForDeletedUserRejected(t *testing.T) {
	app := CreateTestApp()

	// Valid signature, but the subject never existed in the store
	svc := auth.NewTokenService(testCfg.JWTSecret, 30*time.Minute)
	token, err := svc.Issue("ghost@example.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	req := httptest.NewRequest("GET", "/tasks/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for unknown subject, got %d", resp.StatusCode)
	}
}
