// Package server assembles the Fiber application: middleware, services and
// the /api route table.
package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/cache"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/config"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/events"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/handlers"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/metrics"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/services/account"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/services/contracts"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/services/gateway"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/services/jobs"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/services/ledger"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/services/profiles"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/storage"
)

// Deps are the long-lived collaborators built by the caller. Redis, Events
// and Cache may be nil.
type Deps struct {
	Config  config.Config
	DB      *gorm.DB
	Log     *slog.Logger
	Redis   *redis.Client
	Cache   *cache.Cache
	Events  events.Publisher
	Gateway gateway.Gateway
	Disk    storage.Disk
	Hub     *realtime.Hub
}

// ErrorHandler renders errors that escape a handler (fiber errors, panics)
// in the failure envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"success": false, "error": msg})
}

// defaultHub is a local-only hub that runs for the life of the process.
func defaultHub(log *slog.Logger) *realtime.Hub {
	hub := realtime.NewHub(nil, log)
	go hub.Run(context.Background())
	return hub
}

// New builds the app. A nil Hub is replaced by a running local hub.
func New(d Deps) *fiber.App {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Hub == nil {
		d.Hub = defaultHub(d.Log)
	}
	cfg := d.Config

	app := fiber.New(fiber.Config{
		AppName:      "techkr",
		ErrorHandler: ErrorHandler,
	})

	app.Use(metrics.Middleware())
	app.Use(middleware.RequestLogger(d.Log))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		ExposeHeaders:    "Content-Length, X-Request-ID",
		AllowCredentials: true,
	}))

	if local, ok := d.Disk.(*storage.Local); ok {
		app.Static("/uploads", local.Root())
	}

	accounts := account.NewService(d.DB)
	jobSvc := jobs.NewService(d.DB)
	contractSvc := contracts.NewService(d.DB)
	ledgerSvc := ledger.NewService(d.DB, d.Gateway)
	profileSvc := profiles.NewService(d.DB, d.Cache)

	b := &handlers.Broadcaster{DB: d.DB, Hub: d.Hub, Events: d.Events, Cache: d.Cache}

	authH := &handlers.AuthHandler{
		Accounts:     accounts,
		JWTSecret:    cfg.JWTSecret,
		Expires:      cfg.JWTExpiresMin,
		CookieSecure: cfg.CookieSecure,
	}
	googleH := &handlers.GoogleOAuthHandler{
		Accounts:        accounts,
		JWTSecret:       cfg.JWTSecret,
		Expires:         cfg.JWTExpiresMin,
		CookieSecure:    cfg.CookieSecure,
		GoogleClientID:  cfg.GoogleClientID,
		GoogleSecret:    cfg.GoogleSecret,
		GoogleRedirect:  cfg.GoogleRedirect,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}
	jobH := &handlers.JobHandler{Jobs: jobSvc, B: b}
	appH := &handlers.ApplicationHandler{Jobs: jobSvc, B: b}
	contractH := &handlers.ContractHandler{Contracts: contractSvc, B: b}
	paymentH := &handlers.PaymentHandler{Ledger: ledgerSvc, Gateway: d.Gateway, B: b}
	talentH := &handlers.TalentHandler{Profiles: profileSvc, Disk: d.Disk}
	clientH := &handlers.ClientHandler{Profiles: profileSvc}
	metaH := &handlers.MetaHandler{DB: d.DB, Redis: d.Redis}
	notifyH := &handlers.NotificationHandler{Hub: d.Hub, JWTSecret: cfg.JWTSecret}

	// signedIn prefixes h with session checks, optionally limited to roles.
	signedIn := func(h fiber.Handler, roles ...string) []fiber.Handler {
		chain := []fiber.Handler{
			middleware.JWTFromCookie(cfg.JWTSecret),
			middleware.AttachJWTLocals(),
		}
		if len(roles) > 0 {
			chain = append(chain, middleware.RequireRoles(roles...))
		}
		return append(chain, h)
	}

	app.Get("/healthz", metaH.Healthz)
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	api.Post("/auth/register/talent", authH.RegisterTalent)
	api.Post("/auth/register/client", authH.RegisterClient)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/auth/session", signedIn(authH.Session)...)
	api.Get("/auth/google/start", googleH.GoogleStart)
	api.Get("/auth/google/callback", googleH.GoogleCallback)

	api.Get("/jobs", jobH.List)
	api.Get("/jobs/:id", jobH.Get)
	api.Post("/jobs", signedIn(jobH.Create, "client")...)
	api.Put("/jobs/:id", signedIn(jobH.Update, "client")...)
	api.Delete("/jobs/:id", signedIn(jobH.Delete, "client")...)

	api.Get("/jobs/:id/apply", appH.List)
	api.Post("/jobs/:id/apply", signedIn(appH.Apply, "talent")...)
	api.Put("/jobs/:id/apply", signedIn(appH.UpdateStatus, "client", "talent")...)
	api.Delete("/jobs/:id/apply", signedIn(appH.Delete, "client", "talent")...)

	api.Get("/talents", talentH.Search)
	api.Get("/talents/:id", talentH.Get)
	api.Put("/talents/:id", signedIn(talentH.Update, "talent")...)
	api.Post("/talents/:id/resume", signedIn(talentH.UploadResume, "talent")...)
	api.Get("/talents/:id/dashboard", signedIn(talentH.Dashboard, "talent")...)

	api.Get("/clients/:id", clientH.Get)
	api.Put("/clients/:id", signedIn(clientH.Update, "client")...)
	api.Get("/clients/:id/dashboard", signedIn(clientH.Dashboard, "client")...)

	api.Post("/contracts", signedIn(contractH.Create, "client")...)
	api.Get("/contracts/:id", signedIn(contractH.Get)...)
	api.Post("/contracts/:id/hours", signedIn(contractH.LogHours, "talent")...)
	api.Post("/contracts/:id/complete", signedIn(contractH.Complete, "client")...)
	api.Post("/contracts/:id/review", signedIn(contractH.Review, "client")...)

	api.Get("/payments/channels", paymentH.Channels)
	api.Post("/payments", signedIn(paymentH.Process, "client")...)
	api.Post("/payments/tip", signedIn(paymentH.Tip, "client")...)

	api.Get("/meta/states", metaH.States)

	api.Get("/ws/notifications", notifyH.Upgrade, notifyH.Serve())

	return app
}
