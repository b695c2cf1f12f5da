package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mapshare/internal/config"
	"mapshare/internal/db"
	"mapshare/internal/mapsync"
	"mapshare/internal/middleware"
	"mapshare/internal/realtime"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Deps struct {
	TxRunner   db.TxRunner
	Users      UserStore
	Profiles   ProfileStore
	Wallet     WalletService
	Messages   MessageService
	Locations  LocationService
	HotDeals   HotDealService
	Treasures  TreasureService
	Businesses BusinessService
	Map        MapSource
	Files      FileReader
	Hub        *realtime.Hub
}

type Handler struct {
	cfg        config.Config
	logger     *slog.Logger
	txRunner   db.TxRunner
	users      UserStore
	profiles   ProfileStore
	wallet     WalletService
	messages   MessageService
	locations  LocationService
	deals      HotDealService
	treasures  TreasureService
	businesses BusinessService
	mapSource  MapSource
	files      FileReader
	hub        *realtime.Hub
	now        func() time.Time
}

func New(cfg config.Config, logger *slog.Logger, deps Deps) *Handler {
	return &Handler{
		cfg:        cfg,
		logger:     logger,
		txRunner:   deps.TxRunner,
		users:      deps.Users,
		profiles:   deps.Profiles,
		wallet:     deps.Wallet,
		messages:   deps.Messages,
		locations:  deps.Locations,
		deals:      deps.HotDeals,
		treasures:  deps.Treasures,
		businesses: deps.Businesses,
		mapSource:  deps.Map,
		files:      deps.Files,
		hub:        deps.Hub,
		now:        time.Now,
	}
}

func (h *Handler) mapConfig() mapsync.Config {
	return mapsync.Config{ClusterRadius: h.cfg.ClusterRadius, ClusterMaxZoom: h.cfg.ClusterMaxZoom}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestLogger(h.logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(h.cfg.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "Idempotency-Key", "apikey", "x-client-info"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authed := middleware.Auth(h.cfg.JWTSecret)
	router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.With(authed).Get("/me", h.Me)
	})

	router.Group(func(r chi.Router) {
		r.Use(authed)
		r.Get("/users/{id}", h.GetProfile)
		r.Put("/profile", h.UpdateProfile)

		r.Get("/locations", h.ListLocations)
		r.Get("/locations/nearby", h.NearbyLocations)
		r.Put("/locations/me", h.ShareLocation)
		r.Delete("/locations/me", h.RemoveLocation)

		r.Get("/map/features", h.MapFeatures)
		r.Get("/map/config", h.MapConfig)
		r.Post("/map/click", h.MapClick)

		r.Get("/wallet", h.GetWallet)
		r.Get("/wallet/transactions", h.ListTransactions)

		r.Post("/messages", h.SendMessage)
		r.Get("/messages/inbox", h.Inbox)
		r.Get("/messages/sent", h.SentMessages)
		r.Get("/messages/{id}", h.OpenMessage)
		r.Post("/messages/{id}/feedback", h.RateMessage)

		r.Get("/hot-deals", h.ListHotDeals)
		r.With(middleware.RequireCompany).Post("/hot-deals", h.CreateHotDeal)
		r.Delete("/hot-deals/{id}", h.DeleteHotDeal)

		r.Get("/treasures", h.ListTreasures)
		r.Post("/treasures", h.CreateTreasure)
		r.Post("/treasures/{id}/find", h.FindTreasure)
		r.Get("/treasures/{id}/qr", h.TreasureQRCode)

		r.Get("/businesses", h.ListBusinesses)
		r.Get("/businesses/{id}", h.GetBusiness)
		r.With(middleware.RequireCompany).Put("/business", h.UpsertBusiness)

		r.Post("/rpc/distribute_payment", h.DistributePayment)
		r.Post("/rpc/update_wallet_balance", h.UpdateWalletBalance)
	})

	router.Route("/functions/v1", func(r chi.Router) {
		r.Options("/add-to-wallet", h.AddToWalletPreflight)
		r.Post("/add-to-wallet", h.AddToWallet)
	})

	router.Get("/storage/{bucket}/*", h.ServeObject)
	router.Get("/ws/changes", h.WSChanges)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
