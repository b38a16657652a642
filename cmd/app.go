package cmd

import (
	"fmt"

	"github.com/termlink/issuemirror/internal/config"
	"github.com/termlink/issuemirror/internal/github"
	"github.com/termlink/issuemirror/internal/githubapp"
	"github.com/termlink/issuemirror/internal/mention"
	"github.com/termlink/issuemirror/internal/mirror"
	"github.com/termlink/issuemirror/internal/store"
	"github.com/termlink/issuemirror/internal/syncer"
)

// app bundles the wired-up components the commands operate on.
type app struct {
	store   *store.Store
	manager *syncer.Manager
	issues  *syncer.IssuesService
	events  *syncer.EventHandler
}

// newApp loads configuration and constructs the full component graph. It
// fails fast when the app credentials are missing or unreadable.
func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	identity, err := githubapp.NewAppIdentity(cfg.GitHub.AppID, cfg.GitHub.PrivateKeyPath)
	if err != nil {
		return nil, err
	}
	signer := githubapp.NewSigner(identity)
	factory, err := githubapp.NewClientFactory(signer, cfg.GitHub.Domain)
	if err != nil {
		return nil, err
	}
	resolver := githubapp.NewInstallationResolver(factory)
	tokens := githubapp.NewTokenCache(factory)
	fetcher := github.NewIssueFetcher(factory, resolver, tokens)

	db, err := store.New(cfg.Store.Path)
	if err != nil {
		return nil, err
	}

	translator := mirror.NewTranslator(mention.NewRegexExtractor())
	reconciler := mirror.NewReconciler(translator, db)
	manager := syncer.NewManager(db, fetcher, reconciler)

	return &app{
		store:   db,
		manager: manager,
		issues:  syncer.NewIssuesService(manager, db, db),
		events:  syncer.NewEventHandler(manager, reconciler),
	}, nil
}

// close releases the app's resources.
func (a *app) close() {
	a.store.Close()
}
