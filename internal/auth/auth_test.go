package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quizforge/composer/internal/auth"
)

func TestIssueParse(t *testing.T) {
	s := auth.NewService("secret")
	tok, err := s.Issue("teacher")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := s.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Sub != "teacher" {
		t.Fatalf("sub = %q", claims.Sub)
	}
	if _, err := auth.NewService("other").Parse(tok); err == nil {
		t.Fatal("token accepted under a different secret")
	}
}

func TestRequireBearerPassesTokenThrough(t *testing.T) {
	var seen string
	h := auth.RequireBearer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.TokenFrom(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no-auth status = %d", rec.Code)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer opaque-cred")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seen != "opaque-cred" {
		t.Fatalf("status = %d, token = %q", rec.Code, seen)
	}
}

func TestLoginHandler(t *testing.T) {
	s := auth.NewService("secret")
	hash, err := auth.HashPassword("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	h := auth.LoginHandler(s, map[string]string{"teacher": hash})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest("POST", "/auth/login",
		strings.NewReader(`{"username":"teacher","password":"wrong"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest("POST", "/auth/login",
		strings.NewReader(`{"username":"teacher","password":"hunter2"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body)
	}
	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Parse(out["access_token"]); err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
}
