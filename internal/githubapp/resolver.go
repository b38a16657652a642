package githubapp

import (
	"context"
	"sync"

	"github.com/termlink/issuemirror/internal/logging"
	"github.com/termlink/issuemirror/pkg/models"
)

// InstallationResolver resolves the app's installation id on a repository.
//
// Results are memoized per repository coordinate as a shared future: the
// first caller for a coordinate issues exactly one outbound lookup and every
// caller, concurrent or later, observes that same result. Entries live for
// the process lifetime; Forget provides an explicit invalidation hook for
// the uninstall/reinstall case.
type InstallationResolver struct {
	factory *ClientFactory

	mu    sync.Mutex
	cache map[models.RepoCoordinates]*installationFuture
}

// installationFuture is a memoized asynchronous lookup result. done is
// closed once id and err are populated.
type installationFuture struct {
	done chan struct{}
	id   int64
	err  error
}

// NewInstallationResolver creates a resolver backed by the given client
// factory.
func NewInstallationResolver(factory *ClientFactory) *InstallationResolver {
	return &InstallationResolver{
		factory: factory,
		cache:   make(map[models.RepoCoordinates]*installationFuture),
	}
}

// Resolve returns the installation id for the repository, performing at most
// one outbound lookup per coordinate. It fails with NotInstalledError if the
// app has no installation on the repository, AuthorizationError on
// credential rejection, and RemoteError otherwise.
func (r *InstallationResolver) Resolve(ctx context.Context, coords models.RepoCoordinates) (int64, error) {
	r.mu.Lock()
	future, ok := r.cache[coords]
	if !ok {
		future = &installationFuture{done: make(chan struct{})}
		r.cache[coords] = future
		go r.fetch(future, coords)
	}
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-future.done:
		return future.id, future.err
	}
}

// Forget drops the cached result for a coordinate. The next Resolve call
// performs a fresh lookup.
func (r *InstallationResolver) Forget(coords models.RepoCoordinates) {
	r.mu.Lock()
	delete(r.cache, coords)
	r.mu.Unlock()
}

// fetch performs the lookup that populates a future. It runs detached from
// any single caller's context so that one caller's cancellation cannot
// poison the shared cache entry.
func (r *InstallationResolver) fetch(future *installationFuture, coords models.RepoCoordinates) {
	defer close(future.done)

	ctx := context.Background()
	client := r.factory.AppClient(ctx)
	installation, resp, err := client.Apps.FindRepositoryInstallation(ctx, coords.Owner, coords.Name)
	if err != nil {
		future.err = classifyInstallationLookup(coords, resp, err)
		logging.Error("failed to resolve installation id",
			"repository", coords.FullName(),
			"error", future.err)
		return
	}

	future.id = installation.GetID()
	logging.Info("resolved installation id",
		"repository", coords.FullName(),
		"installation_id", future.id)
}
