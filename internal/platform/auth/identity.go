package auth

import (
	"context"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"
)

// Identity is the signed-in cook behind a request, taken from a Firebase ID token.
type Identity struct {
	UID            string
	Email          string
	DisplayName    string
	Locale         string
	SignInProvider string

	token *firebaseauth.Token
}

// newIdentity reads the profile claims of a verified token. The locale falls back to the
// standard "locale" claim when localeClaim is absent.
func newIdentity(token *firebaseauth.Token, localeClaim string) *Identity {
	claim := func(key string) string {
		v, _ := token.Claims[key].(string)
		return strings.TrimSpace(v)
	}
	id := &Identity{
		UID:            strings.TrimSpace(token.UID),
		Email:          claim("email"),
		DisplayName:    claim("name"),
		Locale:         claim(localeClaim),
		SignInProvider: token.Firebase.SignInProvider,
		token:          token,
	}
	if id.Locale == "" {
		id.Locale = claim("locale")
	}
	return id
}

func (i *Identity) Token() *firebaseauth.Token {
	if i == nil {
		return nil
	}
	return i.token
}

// ClientKey is "uid:<uid>", the key rate limits and idempotency records are scoped by.
func (i *Identity) ClientKey() string {
	if i == nil || i.UID == "" {
		return ""
	}
	return "uid:" + i.UID
}

type identityKey struct{}

func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext reports false for anonymous requests.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	if ctx == nil {
		return nil, false
	}
	identity, _ := ctx.Value(identityKey{}).(*Identity)
	return identity, identity != nil
}
