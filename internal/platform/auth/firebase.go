package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/homechef/api/internal/platform/config"
)

// The Admin SDK skips signature checks when this is set; local runs use it with the Auth emulator.
const envAuthEmulatorHost = "FIREBASE_AUTH_EMULATOR_HOST"

// FirebaseVerifier checks ID tokens with the Firebase Admin SDK.
type FirebaseVerifier struct {
	client       *firebaseauth.Client
	checkRevoked bool
}

var _ TokenVerifier = (*FirebaseVerifier)(nil)

// NewFirebaseVerifier initialises an Admin SDK auth client for cfg.ProjectID. Credentials come
// from cfg.CredentialsFile or, when empty, Application Default Credentials.
func NewFirebaseVerifier(ctx context.Context, cfg config.FirebaseConfig) (*FirebaseVerifier, error) {
	projectID := strings.TrimSpace(cfg.ProjectID)
	if projectID == "" {
		return nil, errors.New("auth: firebase project id is required")
	}

	var opts []option.ClientOption
	switch {
	case os.Getenv(envAuthEmulatorHost) != "":
		opts = append(opts, option.WithoutAuthentication())
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		opts = append(opts, option.WithCredentialsFile(strings.TrimSpace(cfg.CredentialsFile)))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("auth: firebase app for %s: %w", projectID, err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth: firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client, checkRevoked: cfg.CheckRevoked}, nil
}

// VerifyIDToken validates the token signature, audience and expiry. With revocation checks
// enabled it also rejects tokens issued before the user's sessions were revoked.
func (v *FirebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
	if v == nil || v.client == nil {
		return nil, errVerifierUnavailable
	}
	if v.checkRevoked {
		return v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	}
	return v.client.VerifyIDToken(ctx, idToken)
}
