// README: Firebase Admin SDK initialisation and ID token verifier.
package infra

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"ridehail/internal/auth"
	"ridehail/internal/modules/user"
	"ridehail/internal/types"
)

// Custom claims set on each Firebase account by the admin tooling.
const (
	claimUserID = "ride_user_id"
	claimRole   = "role"
)

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier is the auth.Verifier backed by the Firebase Admin SDK.
type FirebaseVerifier struct {
	client idTokenVerifier
}

// NewFirebaseVerifier creates a verifier using the Firebase Admin SDK.
// If credentialsFile is non-empty it is used as the service-account JSON path;
// otherwise application-default credentials / GOOGLE_APPLICATION_CREDENTIALS are used.
// projectID is required so the SDK can construct the correct token-verification URL.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (*FirebaseVerifier, error) {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase app.Auth: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (auth.Principal, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	return principalFromClaims(token.Claims)
}

// principalFromClaims maps custom claims onto a Principal. JSON numbers
// decode as float64; string ids are accepted too.
func principalFromClaims(claims map[string]interface{}) (auth.Principal, error) {
	var id types.ID
	switch v := claims[claimUserID].(type) {
	case float64:
		id = types.ID(v)
	case string:
		id, _ = types.ParseID(v)
	}
	if id <= 0 {
		return auth.Principal{}, auth.ErrInvalidToken
	}
	role, _ := claims[claimRole].(string)
	if role == "" {
		role = string(user.RolePassenger)
	}
	p := auth.Principal{UserID: id, Role: user.Role(role)}
	if !p.Role.Valid() {
		return auth.Principal{}, auth.ErrInvalidToken
	}
	return p, nil
}
