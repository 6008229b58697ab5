package credentials

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

// CloudPlatformScope is the OAuth2 scope for Vertex AI and Discovery Engine.
const CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// AccessTokenSource returns an OAuth2 access token source for Google APIs.
// With an empty file it uses Application Default Credentials.
func AccessTokenSource(ctx context.Context, file string) (oauth2.TokenSource, error) {
	if file == "" {
		ts, err := google.DefaultTokenSource(ctx, CloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("finding default credentials: %w", err)
		}
		return ts, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, CloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials file: %w", err)
	}

	return creds.TokenSource, nil
}

// IDTokenSource returns a token source minting ID tokens for audience, used
// to call deployments that require an authenticated invoker.
func IDTokenSource(ctx context.Context, audience, file string) (oauth2.TokenSource, error) {
	var opts []idtoken.ClientOption
	if file != "" {
		opts = append(opts, option.WithCredentialsFile(file))
	}

	ts, err := idtoken.NewTokenSource(ctx, audience, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating id token source: %w", err)
	}

	return ts, nil
}

// ForService resolves the access token source for a service, honoring a key
// file stored in credentials.toml.
func (m *Manager) ForService(ctx context.Context, service string) (oauth2.TokenSource, error) {
	file, err := m.CredentialsFile(service)
	if err != nil {
		return nil, err
	}
	return AccessTokenSource(ctx, file)
}
