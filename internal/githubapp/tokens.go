package githubapp

import (
	"context"
	"sync"
	"time"

	"github.com/google/go-github/v41/github"

	"github.com/termlink/issuemirror/internal/logging"
	"github.com/termlink/issuemirror/pkg/models"
)

// expiryMargin is subtracted from a token's remaining lifetime so that a
// token is never presented to GitHub after it has actually expired. The
// margin absorbs clock skew and network latency.
const expiryMargin = 5 * time.Second

// ExpiryPolicy computes the remaining lifetime for a freshly inserted token.
// The lifetime depends on the expiry timestamp inside the token itself, so a
// uniform fixed TTL cannot express it.
type ExpiryPolicy func(token models.InstallationToken, now time.Time) time.Duration

// DefaultExpiryPolicy keeps a token until five seconds before its declared
// expiry.
func DefaultExpiryPolicy(token models.InstallationToken, now time.Time) time.Duration {
	ttl := token.ExpiresAt.Sub(now) - expiryMargin
	if ttl < 0 {
		return 0
	}
	return ttl
}

// TokenCache returns currently valid installation access tokens, fetching
// and caching a new one when none is live. Expiry is computed once at
// insertion time by the ExpiryPolicy and is neither extended nor shortened
// by later reads. Concurrent requests for the same installation share a
// single outbound token-creation call.
type TokenCache struct {
	factory *ClientFactory
	policy  ExpiryPolicy
	now     func() time.Time

	mu      sync.Mutex
	entries map[int64]*tokenEntry
}

// tokenEntry is a pending or completed token fetch. done is closed once the
// fetch finishes; ttl is fixed when the entry is populated.
type tokenEntry struct {
	done       chan struct{}
	token      models.InstallationToken
	insertedAt time.Time
	ttl        time.Duration
	err        error
}

// live reports whether a completed entry still holds a usable token.
func (e *tokenEntry) live(now time.Time) bool {
	select {
	case <-e.done:
	default:
		return true // still being fetched
	}
	return e.err == nil && now.Before(e.insertedAt.Add(e.ttl))
}

// NewTokenCache creates a token cache using the default expiry policy.
func NewTokenCache(factory *ClientFactory) *TokenCache {
	return &TokenCache{
		factory: factory,
		policy:  DefaultExpiryPolicy,
		now:     time.Now,
		entries: make(map[int64]*tokenEntry),
	}
}

// Token returns a currently valid token for the installation, issuing an
// outbound token-creation call only when no live entry exists.
func (c *TokenCache) Token(ctx context.Context, installationID int64) (models.InstallationToken, error) {
	c.mu.Lock()
	entry, ok := c.entries[installationID]
	if !ok || !entry.live(c.now()) {
		entry = &tokenEntry{done: make(chan struct{})}
		c.entries[installationID] = entry
		go c.fetch(entry, installationID)
	}
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		return models.InstallationToken{}, ctx.Err()
	case <-entry.done:
		return entry.token, entry.err
	}
}

// fetch performs the token-creation call that populates an entry. Failed
// fetches are evicted so the next request retries. Like the resolver, the
// call runs detached from any single caller's context.
func (c *TokenCache) fetch(entry *tokenEntry, installationID int64) {
	defer close(entry.done)

	ctx := context.Background()
	client := c.factory.AppClient(ctx)
	logging.Debug("requesting installation token", "installation_id", installationID)

	created, resp, err := client.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		entry.err = ClassifyError("token creation", resp, err)
		logging.Warn("failed to fetch installation token",
			"installation_id", installationID,
			"error", entry.err)
		c.evict(installationID, entry)
		return
	}

	token := models.InstallationToken{
		Token:       created.GetToken(),
		ExpiresAt:   created.GetExpiresAt(),
		Permissions: permissionMap(created.GetPermissions()),
	}

	now := c.now()
	entry.token = token
	entry.insertedAt = now
	entry.ttl = c.policy(token, now)
	logging.Info("cached installation token",
		"installation_id", installationID,
		"token", logging.MaskSensitive(token.Token),
		"ttl", entry.ttl)
}

// permissionMap flattens the permissions GitHub reports on a fresh token
// down to the scopes this service can be granted.
func permissionMap(p *github.InstallationPermissions) map[string]string {
	if p == nil {
		return nil
	}
	perms := make(map[string]string)
	set := func(name, value string) {
		if value != "" {
			perms[name] = value
		}
	}
	set("issues", p.GetIssues())
	set("metadata", p.GetMetadata())
	set("contents", p.GetContents())
	set("pull_requests", p.GetPullRequests())
	if len(perms) == 0 {
		return nil
	}
	return perms
}

// evict removes an entry, but only if it is still the current one for the
// installation.
func (c *TokenCache) evict(installationID int64, entry *tokenEntry) {
	c.mu.Lock()
	if c.entries[installationID] == entry {
		delete(c.entries, installationID)
	}
	c.mu.Unlock()
}
