package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	firebaseauth "firebase.google.com/go/v4/auth"
)

type stubTokenVerifier struct {
	token    *firebaseauth.Token
	err      error
	received string
}

func (s *stubTokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
	s.received = idToken
	if s.err != nil {
		return nil, s.err
	}
	return s.token, nil
}

func validVerifier() *stubTokenVerifier {
	return &stubTokenVerifier{
		token: &firebaseauth.Token{
			UID:      "cook-123",
			Firebase: firebaseauth.FirebaseInfo{SignInProvider: "google.com"},
			Claims: map[string]interface{}{
				"locale": "fr-CM",
				"email":  "cook@example.com",
				"name":   "Ngo Bisseck",
			},
		},
	}
}

func TestRequireFirebaseAuth_AllowsValidToken(t *testing.T) {
	verifier := validVerifier()
	authn := NewAuthenticator(verifier)

	handlerCalled := false
	handler := authn.RequireFirebaseAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true

		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Fatalf("expected identity in context")
		}
		if identity.UID != "cook-123" {
			t.Fatalf("unexpected uid: %s", identity.UID)
		}
		if identity.Locale != "fr-CM" {
			t.Fatalf("expected locale fr-CM, got %s", identity.Locale)
		}
		if identity.Email != "cook@example.com" || identity.DisplayName != "Ngo Bisseck" || identity.SignInProvider != "google.com" {
			t.Fatalf("unexpected profile claims %+v", identity)
		}
		if identity.ClientKey() != "uid:cook-123" {
			t.Fatalf("unexpected client key %s", identity.ClientKey())
		}
		if identity.Token() == nil {
			t.Fatalf("expected token to be retained")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/experiences", nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !handlerCalled {
		t.Fatalf("expected handler to be called")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if verifier.received != "token-abc" {
		t.Fatalf("expected verifier to receive token, got %q", verifier.received)
	}
}

func TestRequireFirebaseAuth_RejectsBadRequests(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		verifier TokenVerifier
		wantCode string
	}{
		{name: "missing header", header: "", verifier: validVerifier(), wantCode: "unauthenticated"},
		{name: "wrong scheme", header: "Basic abc", verifier: validVerifier(), wantCode: "unauthenticated"},
		{name: "expired", header: "Bearer t", verifier: &stubTokenVerifier{err: ErrTokenExpired}, wantCode: "token_expired"},
		{name: "invalid", header: "Bearer t", verifier: &stubTokenVerifier{err: ErrTokenInvalid}, wantCode: "invalid_token"},
		{name: "empty uid", header: "Bearer t", verifier: &stubTokenVerifier{token: &firebaseauth.Token{}}, wantCode: "invalid_token"},
		{name: "no verifier", header: "Bearer t", verifier: nil, wantCode: "unauthenticated"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			authn := NewAuthenticator(tc.verifier)
			handler := authn.RequireFirebaseAuth()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Fatalf("handler should not be called")
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/me/recipes", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			var payload map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if payload["error"] != tc.wantCode {
				t.Fatalf("expected %s, got %v", tc.wantCode, payload["error"])
			}
			if rec.Header().Get("WWW-Authenticate") == "" {
				t.Fatalf("expected WWW-Authenticate header")
			}
		})
	}
}

func TestOptionalFirebaseAuth(t *testing.T) {
	authn := NewAuthenticator(validVerifier())

	var gotIdentity bool
	handler := authn.OptionalFirebaseAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, gotIdentity = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/recipes/ndole:estimate", nil))
	if rec.Code != http.StatusOK || gotIdentity {
		t.Fatalf("expected anonymous pass-through, got %d identity=%v", rec.Code, gotIdentity)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/ndole:estimate", nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !gotIdentity {
		t.Fatalf("expected identity for bearer token, got %d identity=%v", rec.Code, gotIdentity)
	}

	rejecting := NewAuthenticator(&stubTokenVerifier{err: ErrTokenInvalid}).OptionalFirebaseAuth()(handler)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/recipes/ndole:estimate", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec = httptest.NewRecorder()
	rejecting.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for rejected token, got %d", rec.Code)
	}
}

func TestIdentityFromContextMissing(t *testing.T) {
	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Fatal("expected no identity")
	}
	var identity *Identity
	if identity.ClientKey() != "" || identity.Token() != nil {
		t.Fatal("expected nil identity accessors to be safe")
	}
}

func TestRequireFirebaseAuth_UninitialisedVerifier(t *testing.T) {
	handler := NewAuthenticator(&FirebaseVerifier{}).RequireFirebaseAuth()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/experiences", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["message"] != "authorization service unavailable" {
		t.Fatalf("unexpected body %v", body)
	}
}
