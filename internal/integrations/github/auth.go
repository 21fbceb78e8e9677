package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v60/github"
	"golang.org/x/oauth2"
)

// NewClient creates a new GitHub client using the provided token.
// If token is empty, it returns an unauthenticated client.
func NewClient(ctx context.Context, token string) *Client {
	var tc *http.Client

	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc = oauth2.NewClient(ctx, ts)
	}

	return &Client{
		client: github.NewClient(tc),
		retry:  DefaultRetryConfig(),
	}
}

// NewAppClient creates a GitHub client authenticated as a GitHub App
// installation. keyPath points to the App's PEM private key.
func NewAppClient(appID, installationID int64, keyPath string) (*Client, error) {
	itr, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, appID, installationID, keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create app installation transport: %w", err)
	}

	return &Client{
		client: github.NewClient(&http.Client{Transport: itr}),
		retry:  DefaultRetryConfig(),
	}, nil
}
