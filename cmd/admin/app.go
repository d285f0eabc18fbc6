package main

import (
	"fmt"

	"astro-admin-go/internal/apiclient"
	"astro-admin-go/internal/config"
	"astro-admin-go/internal/db"
	"astro-admin-go/internal/localstore"
	"astro-admin-go/internal/migrations"
	"astro-admin-go/internal/services"
	"astro-admin-go/internal/session"
	"astro-admin-go/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// app is the wired client: local storage, session, backend client and the
// store with every slice registered.
type app struct {
	db        *sqlx.DB
	sessions  *session.Manager
	store     *store.Store
	catalogue *services.Catalogue
	auth      *services.Auth
	media     *services.Media
}

func openApp(cfg config.Config, log *logrus.Logger) (*app, error) {
	database, err := db.Open(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if err := migrations.ApplyEmbedded(database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	a := &app{db: database}
	a.sessions = session.NewManager(localstore.New(database))
	a.store = store.New(log)
	client := apiclient.New(cfg.APIBaseURL,
		apiclient.WithTimeout(cfg.RequestTimeout),
		apiclient.WithTokenSource(a.sessions),
		apiclient.WithLogger(log),
		apiclient.WithUnauthorizedHandler(func() { a.auth.HandleUnauthorized() }),
	)
	a.catalogue = services.NewCatalogue(a.store, client)
	a.auth = services.NewAuth(client, a.sessions, a.store, log)
	a.media = services.NewMedia(client, a.catalogue.Articles, log)
	return a, nil
}

func (a *app) Close() {
	a.store.Close()
	_ = a.db.Close()
}
