// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"dropcore/file-api/db"
	"dropcore/file-api/internal/ledger"
	"dropcore/file-api/internal/service"
	"dropcore/file-api/internal/storage"
	"dropcore/file-api/pkg/middleware"
	"dropcore/file-api/pkg/security"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

type API struct {
	DB       *gorm.DB
	Router   *gin.Engine
	Argon    *security.ArgonHash
	Store    storage.Backend
	Ledger   *ledger.Ledger
	Uploader *service.Uploader
	Sweeper  *service.Sweeper
}

func NewRouter() (*API, error) {
	d, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	makeLogger()

	s, err := storage.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage backend, %w", err)
	}

	a := &API{
		DB:    d,
		Store: s,
	}
	a.setup()

	if iv := viper.GetInt("retention.sweep_interval"); iv > 0 {
		service.AttachSweeper(time.Duration(iv)*time.Minute, a.Sweeper)
	}

	if iv := viper.GetInt("tokens.cleanup_interval"); iv > 0 {
		service.TokenCleanup(time.Duration(iv)*time.Minute, d)
	}

	return a, nil
}

// setup wires the remaining dependencies and registers every route.
// Split from NewRouter so tests can swap in their own database and
// storage backend
func (a *API) setup() {
	a.Argon = security.New()
	a.Ledger = ledger.New(a.DB)
	a.Uploader = service.NewUploader(a.DB, a.Store, a.Ledger)
	a.Sweeper = service.NewSweeper(a.DB, a.Store)

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{viper.GetString("host.cors_origin")},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = 5 << 20

	jwt := middleware.NewJWTMiddleware(a.DB)
	admin := middleware.RequireAdmin()
	maxUploadSize := viper.GetInt64("upload.max_size")

	main := router.Group("/api", middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: 25,
		Burst:             50,
	}))
	{
		// GET /api/health		-> Used to check if the server is alive
		main.GET("/health", a.Health)
	}

	auth := main.Group("/auth", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/auth/register	-> Registers a new user, returns a token
		auth.POST("/register", a.AuthRegister)

		// POST /api/auth/login		-> Logs in a user, returns a token
		auth.POST("/login", a.AuthLogin)

		// POST /api/auth/demo		-> Logs into the shared demo account
		auth.POST("/demo", a.AuthDemo)

		// GET /api/auth/me		-> Returns the current profile
		auth.GET("/me", jwt, a.AuthMe)

		// PUT /api/auth/update		-> Updates name/email
		auth.PUT("/update", jwt, a.AuthUpdate)

		// PUT /api/auth/change-password
		auth.PUT("/change-password", jwt, a.AuthChangePassword)

		// POST /api/auth/forgot-password -> Issues a single-use reset token
		auth.POST("/forgot-password", a.AuthForgotPassword)

		// PUT /api/auth/reset-password/:token
		auth.PUT("/reset-password/:token", a.AuthResetPassword)
	}

	files := main.Group("/files", jwt)
	{
		// POST /api/files/upload	-> Uploads a new file
		files.POST("/upload", middleware.BodySizeLimiter(maxUploadSize+1<<20), a.FileUpload)

		// POST /api/files/upload-multiple -> Uploads up to 10 files at once
		files.POST("/upload-multiple", middleware.BodySizeLimiter(10*maxUploadSize+1<<20), a.FileUploadMultiple)

		// GET /api/files		-> Lists the user's files
		files.GET("", a.FileList)

		// GET /api/files/stats		-> Returns the user's storage stats
		files.GET("/stats", a.FileStats)

		// GET /api/files/download/:id	-> Streams a file as an attachment
		files.GET("/download/:id", a.FileDownload)

		// GET /api/files/:id		-> Returns a single file's metadata
		files.GET("/:id", a.FileGet)

		// PUT /api/files/:id		-> Updates description/tags/visibility
		files.PUT("/:id", a.FileEdit)

		// DELETE /api/files/:id	-> Soft-deletes a file
		files.DELETE("/:id", a.FileDelete)

		// POST /api/files/cleanup	-> Purges soft-deleted files past retention
		files.POST("/cleanup", admin, a.FileCleanup)
	}

	adm := main.Group("/admin", jwt, admin)
	{
		// GET /api/admin/users		-> Lists all users
		adm.GET("/users", a.AdminListUsers)

		// GET /api/admin/files		-> Lists all files
		adm.GET("/files", a.AdminListFiles)

		// GET /api/admin/stats		-> System-wide statistics
		adm.GET("/stats", cacheFor(30), a.AdminStats)

		// PUT /api/admin/users/:id	-> Edits role/active flag/quota
		adm.PUT("/users/:id", a.AdminUpdateUser)

		// DELETE /api/admin/users/:id	-> Hard-deletes a user and their files
		adm.DELETE("/users/:id", a.AdminDeleteUser)

		// DELETE /api/admin/files/:id	-> Hard-deletes a file, skipping retention
		adm.DELETE("/files/:id", a.AdminDeleteFile)

		// POST /api/admin/users/:id/recount -> Recomputes the user's counters
		adm.POST("/users/:id/recount", a.AdminRecount)
	}
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
