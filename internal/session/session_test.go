package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestManagerRoundTrip(t *testing.T) {
	t.Parallel()

	manager := NewManager(NewMemoryStore(), false)
	ctx := context.Background()

	recorder := httptest.NewRecorder()
	sessionID, err := manager.Create(ctx, recorder, &Data{Email: "b@x.com", BearerToken: "tok-1"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sessionID == "" {
		t.Fatal("Create() returned empty session id")
	}

	cookies := recorder.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != cookieName {
		t.Fatalf("cookies = %+v, want one %s cookie", cookies, cookieName)
	}

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(cookies[0])

	data, err := manager.Get(ctx, request)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if data.Email != "b@x.com" || data.BearerToken != "tok-1" {
		t.Errorf("data = %+v, want stored email and token", data)
	}
}

func TestCreateRequiresToken(t *testing.T) {
	t.Parallel()

	manager := NewManager(NewMemoryStore(), false)
	if _, err := manager.Create(context.Background(), httptest.NewRecorder(), &Data{Email: "a@x.com"}); err == nil {
		t.Fatal("Create() without token = nil error, want failure")
	}
}

func TestDestroyClearsSession(t *testing.T) {
	t.Parallel()

	manager := NewManager(NewMemoryStore(), false)
	ctx := context.Background()

	recorder := httptest.NewRecorder()
	if _, err := manager.Create(ctx, recorder, &Data{BearerToken: "tok-2"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	cookie := recorder.Result().Cookies()[0]

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(cookie)
	manager.Destroy(ctx, httptest.NewRecorder(), request)

	if _, err := manager.Get(ctx, request); err == nil {
		t.Fatal("Get() after Destroy() = nil error, want failure")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	store.Set(ctx, "sess-1", &Data{Email: "a@x.com"}, -time.Second)
	if _, ok := store.Get(ctx, "sess-1"); ok {
		t.Fatal("Get(expired) = ok, want miss")
	}
}

func TestEmailFromToken(t *testing.T) {
	t.Parallel()

	claims, _ := json.Marshal(map[string]any{"sub": "user-1", "email": "b@x.com"})
	header, _ := json.Marshal(map[string]any{"alg": "HS256", "typ": "JWT"})
	token := base64.RawURLEncoding.EncodeToString(header) + "." +
		base64.RawURLEncoding.EncodeToString(claims) + ".sig"

	if got := EmailFromToken(token); got != "b@x.com" {
		t.Errorf("EmailFromToken() = %q, want b@x.com", got)
	}
	if got := EmailFromToken("not-a-jwt"); got != "" {
		t.Errorf("EmailFromToken(garbage) = %q, want empty", got)
	}
}

func TestCreateFallsBackToTokenEmail(t *testing.T) {
	t.Parallel()

	claims, _ := json.Marshal(map[string]any{"email": "claim@x.com"})
	header, _ := json.Marshal(map[string]any{"alg": "HS256", "typ": "JWT"})
	token := base64.RawURLEncoding.EncodeToString(header) + "." +
		base64.RawURLEncoding.EncodeToString(claims) + ".sig"

	manager := NewManager(NewMemoryStore(), false)
	recorder := httptest.NewRecorder()
	if _, err := manager.Create(context.Background(), recorder, &Data{BearerToken: token}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(recorder.Result().Cookies()[0])
	data, err := manager.Get(context.Background(), request)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if data.Email != "claim@x.com" {
		t.Errorf("Email = %q, want token claim email", data.Email)
	}
}
