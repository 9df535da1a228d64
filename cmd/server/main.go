package main

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"blog/internal/accounts"
	"blog/internal/auth"
	"blog/internal/config"
	"blog/internal/db"
	"blog/internal/handlers"
	"blog/internal/posts"
	"blog/internal/uploads"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.WithError(err).Fatal("create data dir")
	}
	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		log.WithError(err).Fatal("create upload dir")
	}

	dbc, err := db.Open(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer dbc.Close()

	if err := db.Migrate(dbc); err != nil {
		log.WithError(err).Fatal("migrate database")
	}

	sessions := auth.NewManager(dbc, cfg.SessionTTL)
	h := handlers.New(
		accounts.New(dbc),
		posts.New(dbc),
		sessions,
		uploads.New(cfg.UploadDir),
		cfg.TemplateGlob,
		log,
		cfg.MaxImageMB,
	)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handlers.WithRecover(h.Routes(cfg.StaticDir, cfg.UploadDir), log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.WithField("addr", cfg.Addr).Info("listening")
	log.Fatal(srv.ListenAndServe())
}
