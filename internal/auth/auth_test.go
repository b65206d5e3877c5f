package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/api/idtoken"
)

func TestSessionsRoundTrip(t *testing.T) {
	s := NewSessions("0123456789abcdef0123456789abcdef", time.Hour)
	token, expires, err := s.Issue("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Fatal("expiry in the past")
	}

	claims, err := s.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "a@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestSessionsRejects(t *testing.T) {
	s := NewSessions("0123456789abcdef0123456789abcdef", time.Hour)
	other := NewSessions("ffffffffffffffffffffffffffffffff", time.Hour)
	foreign, _, _ := other.Issue("user-1", "")

	expired := NewSessions("0123456789abcdef0123456789abcdef", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, _ := expired.Issue("user-1", "")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", Issuer: issuer}})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"expired":      stale,
		"alg none":     unsigned,
		"empty":        "",
	} {
		if _, err := s.Parse(token); !errors.Is(err, ErrInvalidSession) {
			t.Errorf("%s: err = %v, want ErrInvalidSession", name, err)
		}
	}
}

func TestMiddleware(t *testing.T) {
	s := NewSessions("", time.Hour)
	token, _, _ := s.Issue("user-9", "")

	var failures int
	h := s.Middleware(func(w http.ResponseWriter, _ *http.Request, _ error) {
		failures++
		w.WriteHeader(http.StatusUnauthorized)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(UserID(r.Context())))
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if rec.Body.String() != "user-9" {
		t.Fatalf("body = %q", rec.Body.String())
	}

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer nope"} {
		r := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status %d", header, rec.Code)
		}
	}
	if failures != 4 {
		t.Fatalf("failures = %d", failures)
	}
}

func TestDevVerifier(t *testing.T) {
	id, err := DevVerifier{}.Verify(context.Background(), "dev:u1:priya@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if id.Subject != "u1" || id.Email != "priya@example.com" || id.Name != "priya" {
		t.Fatalf("unexpected identity %+v", id)
	}
	for _, bad := range []string{"", "dev::x", "google:u1:x", "dev:u1"} {
		if _, err := (DevVerifier{}).Verify(context.Background(), bad); !errors.Is(err, ErrInvalidCredential) {
			t.Errorf("%q: err = %v", bad, err)
		}
	}
}

func TestGoogleVerifier(t *testing.T) {
	v := NewGoogleVerifier("client-id")
	v.validate = func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
		if audience != "client-id" {
			t.Errorf("audience = %q", audience)
		}
		if token != "good" {
			return nil, errors.New("bad signature")
		}
		return &idtoken.Payload{
			Subject: "1234",
			Claims:  map[string]interface{}{"email": "a@b.c", "name": "Asha", "picture": "https://p"},
		}, nil
	}

	id, err := v.Verify(context.Background(), "good")
	if err != nil {
		t.Fatal(err)
	}
	if id != (Identity{Subject: "1234", Email: "a@b.c", Name: "Asha", Picture: "https://p"}) {
		t.Fatalf("unexpected identity %+v", id)
	}
	if _, err := v.Verify(context.Background(), "forged"); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("err = %v", err)
	}
}
