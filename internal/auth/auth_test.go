package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func sessionCookie(t *testing.T, teacherID uint) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	CreateSession(rr, teacherID)
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatalf("session cookie not set")
	return nil
}

func TestSessionRoundTrip(t *testing.T) {
	c := sessionCookie(t, 42)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	id, ok := ParseSession(req)
	if !ok || id != 42 {
		t.Fatalf("expected teacher 42, got %d ok=%v", id, ok)
	}
}

func TestParseSessionRejectsTampered(t *testing.T) {
	c := sessionCookie(t, 42)
	c.Value = "99." + c.Value[len("42."):]
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	if _, ok := ParseSession(req); ok {
		t.Fatalf("tampered cookie should not parse")
	}
}

func TestClearSessionExpiresCookie(t *testing.T) {
	rr := httptest.NewRecorder()
	ClearSession(rr)
	var found bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookieName {
			found = true
			if !c.Expires.Before(time.Now()) {
				t.Fatalf("cookie not expired: %+v", c)
			}
		}
	}
	if !found {
		t.Fatalf("clear did not set cookie")
	}
}

func TestRequireAuthWithoutSession(t *testing.T) {
	h := Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}
