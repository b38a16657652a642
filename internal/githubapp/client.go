package githubapp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"
)

// ClientFactory builds GitHub API clients authenticated either as the app
// itself (via a fresh signed assertion per request) or as an installation
// (via a cached installation token).
type ClientFactory struct {
	signer *Signer
	apiURL *url.URL
}

// NewClientFactory creates a factory for the given domain. An empty domain
// or "github.com" targets the public API; anything else is treated as a
// GitHub Enterprise host.
func NewClientFactory(signer *Signer, domain string) (*ClientFactory, error) {
	if domain == "" {
		domain = "github.com"
	}

	var apiURL string
	if domain == "github.com" {
		apiURL = "https://api.github.com/"
	} else {
		apiURL = fmt.Sprintf("https://%s/api/v3/", domain)
	}
	return NewClientFactoryWithBaseURL(signer, apiURL)
}

// NewClientFactoryWithBaseURL creates a factory targeting an explicit API
// base URL. A trailing slash is appended if missing.
func NewClientFactoryWithBaseURL(signer *Signer, baseURL string) (*ClientFactory, error) {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid github api url: %w", err)
	}
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}
	return &ClientFactory{signer: signer, apiURL: parsedURL}, nil
}

// AppClient returns a client that signs every outbound request with a fresh
// app assertion.
func (f *ClientFactory) AppClient(ctx context.Context) *github.Client {
	httpClient := oauth2.NewClient(ctx, &appAssertionSource{signer: f.signer})
	return f.newClient(httpClient)
}

// InstallationClient returns a client that authenticates every outbound
// request with a currently valid installation token obtained from the token
// cache. Tokens are re-resolved per request, so a token expiring mid-use is
// replaced transparently.
func (f *ClientFactory) InstallationClient(ctx context.Context, tokens *TokenCache, installationID int64) *github.Client {
	source := &installationTokenSource{ctx: ctx, cache: tokens, installationID: installationID}
	httpClient := oauth2.NewClient(ctx, source)
	return f.newClient(httpClient)
}

func (f *ClientFactory) newClient(httpClient *http.Client) *github.Client {
	client := github.NewClient(httpClient)
	client.BaseURL = f.apiURL
	client.UploadURL = f.apiURL
	return client
}

// appAssertionSource is an oauth2.TokenSource that mints a fresh app
// assertion on every call. oauth2.Transport consults the source per request,
// which keeps each outbound call within the ten minute assertion window.
type appAssertionSource struct {
	signer *Signer
}

func (s *appAssertionSource) Token() (*oauth2.Token, error) {
	assertion, err := s.signer.Sign()
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: assertion.Token,
		TokenType:   "Bearer",
		Expiry:      assertion.ExpiresAt,
	}, nil
}

// installationTokenSource adapts the token cache to oauth2.TokenSource for a
// fixed installation id.
type installationTokenSource struct {
	ctx            context.Context
	cache          *TokenCache
	installationID int64
}

func (s *installationTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.cache.Token(s.ctx, s.installationID)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: token.Token,
		TokenType:   "Bearer",
		Expiry:      token.ExpiresAt,
	}, nil
}
