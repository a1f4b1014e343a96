package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/emeraldsmp/portal/pkg/auth"
	"github.com/emeraldsmp/portal/pkg/cache"
	"github.com/emeraldsmp/portal/pkg/database"
	"github.com/emeraldsmp/portal/pkg/logger"
	"github.com/emeraldsmp/portal/pkg/portal"
	"github.com/emeraldsmp/portal/pkg/routes"
	"github.com/emeraldsmp/portal/pkg/syncer"
)

const scheduleTickInterval = time.Minute

var (
	redisClient *redis.Client

	ADDR           string
	DB_DRIVER      string
	DB_DSN         string
	REDIS_HOST     string
	REDIS_PORT     string
	OWNER_EMAIL    string
	OWNER_PASSWORD string
	LOG_FILE       string
	LOG_LEVEL      string

	REQUIRED_ENV = []string{
		"ADDR",
		"DB_DRIVER",
		"DB_DSN",
		"REDIS_HOST",
		"REDIS_PORT",
	}
)

func init() {
	godotenv.Load("./.env")

	ADDR = os.Getenv("ADDR")
	DB_DRIVER = os.Getenv("DB_DRIVER")
	DB_DSN = os.Getenv("DB_DSN")
	REDIS_HOST = os.Getenv("REDIS_HOST")
	REDIS_PORT = os.Getenv("REDIS_PORT")
	OWNER_EMAIL = os.Getenv("OWNER_EMAIL")
	OWNER_PASSWORD = os.Getenv("OWNER_PASSWORD")
	LOG_FILE = os.Getenv("LOG_FILE")
	LOG_LEVEL = os.Getenv("LOG_LEVEL")

	missing := checkenv(REQUIRED_ENV)

	if len(missing) != 0 {
		log.Fatalf(
			"missing %v in env",
			strings.Join(missing, ", "),
		)
	}

	logger.Initialize(logger.Configuration{
		LogFile: LOG_FILE,
		Level:   LOG_LEVEL,
		Console: true,
	})

	redisClient = redis.NewClient(&redis.Options{
		Addr: REDIS_HOST + ":" + REDIS_PORT,
	})
}

func main() {
	db, err := database.Open(DB_DRIVER, DB_DSN)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}

	st, err := database.New(db)
	if err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	svc := portal.New(st, portal.Config{
		OwnerEmail:    OWNER_EMAIL,
		OwnerPassword: OWNER_PASSWORD,
	})

	if err := svc.EnsureOwnerAccount(context.Background()); err != nil {
		logger.Fatal("failed to seed owner account", zap.Error(err))
	}

	sessions := auth.NewRedisStore(redisClient)
	mw := auth.NewMiddleware(sessions, st.Users)
	siteCache := cache.NewSiteCache(redisClient)
	sync := syncer.New(st)

	go runScheduleTicker(svc)

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Mount("/api/auth", routes.AuthRoutes{Service: svc, Sessions: sessions, Middleware: mw}.Routes())
	r.Mount("/api/users", routes.UserRoutes{Service: svc, Middleware: mw}.Routes())
	r.Mount("/api/applications", routes.ApplicationRoutes{Service: svc, Middleware: mw}.Routes())
	r.Mount("/api/forms", routes.FormRoutes{Service: svc, Middleware: mw, Cache: siteCache}.Routes())
	r.Mount("/api/settings", routes.SettingsRoutes{Service: svc, Middleware: mw, Cache: siteCache}.Routes())
	r.Mount("/api/roles", routes.RoleRoutes{Service: svc, Middleware: mw}.Routes())
	r.Mount("/api/sync", routes.SyncRoutes{Service: svc, Syncer: sync, Middleware: mw}.Routes())
	r.Mount("/api/site", routes.SiteRoutes{Service: svc, Cache: siteCache}.Routes())

	logger.Info("listening", zap.String("addr", ADDR))
	if err := http.ListenAndServe(ADDR, r); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

// runScheduleTicker fires form schedules even when no request arrives
// to evaluate them lazily.
func runScheduleTicker(svc *portal.Service) {
	t := time.NewTicker(scheduleTickInterval)
	defer t.Stop()

	for range t.C {
		if err := svc.TickSchedules(context.Background()); err != nil {
			logger.Warn("schedule tick failed", zap.Error(err))
		}
	}
}

func checkenv(keys []string) []string {
	var missing []string
	for _, key := range keys {
		if val, ok := os.LookupEnv(key); len(val) == 0 || !ok {
			missing = append(missing, key)
		}
	}

	return missing
}
