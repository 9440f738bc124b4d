package integration

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/geleit/geleit/pkg/api"
)

func TestLoginLifecycle(t *testing.T) {
	client := newClient(t)

	lr := login(t, client, testUsername, testPassword)
	if lr.Username != testUsername {
		t.Errorf("username = %q, want %q", lr.Username, testUsername)
	}
	if lr.UserID == 0 {
		t.Error("user_id is zero")
	}
	if _, err := time.Parse(time.RFC3339Nano, lr.ExpiresAt); err != nil {
		t.Errorf("expires_at %q is not a timestamp: %v", lr.ExpiresAt, err)
	}

	// The session cookie authenticates follow-up requests.
	resp := getURL(t, client, testEnv.BaseURL()+"/api/me")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/me returned %d: %s", resp.StatusCode, readBody(t, resp))
	}
	var me api.MeResponse
	decodeJSON(t, resp, &me)
	if me.UserID != lr.UserID {
		t.Errorf("me.user_id = %d, want %d", me.UserID, lr.UserID)
	}
	if me.LastLoginAt == nil {
		t.Error("last_login_at not recorded")
	}

	// Log off.
	resp = postJSON(t, client, testEnv.BaseURL()+"/api/logoff", api.LogoffRequest{Logoff: true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logoff returned %d: %s", resp.StatusCode, readBody(t, resp))
	}
	var off api.LogoffResponse
	decodeJSON(t, resp, &off)
	if !off.LoggedOff {
		t.Error("logged_off = false, want true")
	}

	// The session is gone.
	resp = getURL(t, client, testEnv.BaseURL()+"/api/me")
	readBody(t, resp)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("GET /api/me after logoff returned %d, want 401", resp.StatusCode)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	client := newClient(t)

	resp := postJSON(t, client, testEnv.BaseURL()+"/api/login", api.LoginRequest{
		Username: testUsername,
		Password: "not the password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}

	var errResp api.ErrorResponse
	decodeJSON(t, resp, &errResp)
	if errResp.Error == nil {
		t.Fatal("error object is nil")
	}
	if errResp.Error.Type != api.ErrorTypeLoginFail {
		t.Errorf("error.type = %q, want %q", errResp.Error.Type, api.ErrorTypeLoginFail)
	}

	if c := sessionCookie(t, client); c != nil {
		t.Error("session cookie set on failed login")
	}
}

func TestInvalidJSON(t *testing.T) {
	resp, err := http.Post(
		testEnv.BaseURL()+"/api/login",
		"application/json",
		bytes.NewReader([]byte(`{invalid json`)),
	)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	var errResp api.ErrorResponse
	decodeJSON(t, resp, &errResp)
	if errResp.Error == nil {
		t.Fatal("error object is nil")
	}
	if errResp.Error.Type != api.ErrorTypeInvalidRequest {
		t.Errorf("error.type = %q, want %q", errResp.Error.Type, api.ErrorTypeInvalidRequest)
	}
}

func TestLoginThrottled(t *testing.T) {
	client := newClient(t)
	loginURL := testEnv.BaseURL() + "/api/login"
	req := api.LoginRequest{Username: "throttleme", Password: "whatever"}

	// Burn through the budget. The username does not exist, so every
	// attempt is a cheap rejection.
	for i := 0; i < loginAttempts; i++ {
		resp := postJSON(t, client, loginURL, req)
		readBody(t, resp)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i+1, resp.StatusCode)
		}
	}

	resp := postJSON(t, client, loginURL, req)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("over-budget attempt: status = %d, want 429", resp.StatusCode)
	}
	var errResp api.ErrorResponse
	decodeJSON(t, resp, &errResp)
	if errResp.Error == nil || errResp.Error.Type != api.ErrorTypeTooManyRequests {
		t.Errorf("error = %+v, want type %q", errResp.Error, api.ErrorTypeTooManyRequests)
	}
}
