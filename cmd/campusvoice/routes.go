// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/campusvoice/internal/auth"
	"github.com/olegiv/campusvoice/internal/cache"
	"github.com/olegiv/campusvoice/internal/config"
	"github.com/olegiv/campusvoice/internal/editor"
	"github.com/olegiv/campusvoice/internal/handler"
	"github.com/olegiv/campusvoice/internal/handler/api"
	"github.com/olegiv/campusvoice/internal/imaging"
	"github.com/olegiv/campusvoice/internal/middleware"
	"github.com/olegiv/campusvoice/internal/render"
	"github.com/olegiv/campusvoice/internal/service"
)

// uploadsPath is where filesystem-stored images are served.
const uploadsPath = "/uploads"

const requestTimeout = 30 * time.Second

// app holds everything the router needs.
type app struct {
	cfg      *config.Config
	db       *sql.DB
	cache    cache.Cache
	sm       *scs.SessionManager
	sessions *auth.Sessions
	renderer *render.Renderer
	posts    *service.PostService
	contact  *service.ContactService
	events   *service.EventService
	editors  *editor.Manager
	images   *imaging.Ingestor
	logger   *slog.Logger
}

func newRouter(a app) chi.Router {
	cfg := a.cfg

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(a.sm.LoadAndSave)

	csrf := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.PublicBaseURL))
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	frontendHandler := handler.NewFrontendHandler(a.renderer, a.posts, a.sessions, a.logger)
	contactHandler := handler.NewContactHandler(a.renderer, a.contact, a.sessions)
	authHandler := handler.NewAuthHandler(a.renderer, a.sessions, a.events, loginProtection)
	adminHandler := handler.NewAdminHandler(a.renderer, a.posts, a.contact, a.events)
	apiHandler := api.NewHandler(api.Config{
		Posts:   a.posts,
		Contact: a.contact,
		Events:  a.events,
		Editor:  a.editors,
		Images:  a.images,
		Logger:  a.logger,
	})

	healthCfg := handler.HealthConfig{DB: a.db, Cache: a.cache, Users: a.sessions}
	if cfg.ImageStrategy == imaging.StrategyFilesystem {
		healthCfg.UploadsDir = cfg.UploadsDir
	}
	healthHandler := handler.NewHealthHandler(healthCfg)
	seoHandler := handler.NewSEOHandler(a.posts, cfg.PublicBaseURL, cfg.IsDevelopment())

	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)
	r.Get("/sitemap.xml", seoHandler.Sitemap)
	r.Get("/robots.txt", seoHandler.Robots)

	// Cross-origin intake: CORS instead of CSRF. Rate limiting happens in the
	// contact service so over-limit submissions still succeed.
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContactCORS(cfg.CORSAllowedOrigins))
		r.Options(handler.RouteIntake, contactHandler.Intake)
		r.Post(handler.RouteIntake, contactHandler.Intake)
	})

	r.Route("/api/v1", apiHandler.RegisterPublic)

	r.Group(func(r chi.Router) {
		r.Use(csrf)
		r.Get(handler.RouteRoot, frontendHandler.Home)
		r.Get("/posts/{slug}", frontendHandler.Post)
		r.Get(handler.RouteContact, contactHandler.Form)
		r.Post(handler.RouteContact, contactHandler.Submit)
	})

	if cfg.ImageStrategy == imaging.StrategyFilesystem {
		r.Handle(uploadsPath+"/*", http.StripPrefix(uploadsPath, noDirListing(http.FileServer(http.Dir(cfg.UploadsDir)))))
	}

	r.Route("/admin", func(r chi.Router) {
		r.Use(csrf)
		r.Get("/login", authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser(a.sessions))
			r.Post("/logout", authHandler.Logout)
			r.Get("/", adminHandler.Dashboard)
			r.Post("/posts/{id}/publish", adminHandler.PublishPost)
			r.Post("/posts/{id}/unpublish", adminHandler.UnpublishPost)
			r.Get("/messages", adminHandler.Messages)
			r.Post("/messages/{id}/read", adminHandler.MarkMessage)
			r.Get("/events", adminHandler.Events)
			r.Route("/api", apiHandler.RegisterAdmin)
		})
	})

	r.NotFound(frontendHandler.NotFound)
	return r
}

// noDirListing hides directory indexes of the upload folder.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
