// Package web operator http endpoint
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/Laisky/errors/v2"
	ginMw "github.com/Laisky/gin-middlewares/v7"
	gconfig "github.com/Laisky/go-config/v2"
	gutils "github.com/Laisky/go-utils/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/laisky-qa-bot/library/log"
)

// Status is reported by GET /status
type Status struct {
	Predictors     []string `json:"predictors"`
	PendingBackend string   `json:"pending_backend"`
	ExpertChatID   int64    `json:"expert_chat_id"`
	StartedAt      string   `json:"started_at"`
}

// StatusFunc builds the current status
type StatusFunc func(ctx context.Context) (*Status, error)

// NewRouter creates the gin engine serving /health and /status
func NewRouter(status StatusFunc) *gin.Engine {
	if !gconfig.Shared.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	server := gin.New()
	server.Use(
		gin.Recovery(),
		ginMw.NewLoggerMiddleware(
			ginMw.WithLogger(log.Logger.Named("gin")),
		),
	)

	server.Any("/health", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "hello, world")
	})
	server.GET("/status", func(ctx *gin.Context) {
		st, err := status(ctx.Request.Context())
		if err != nil {
			ginMw.GetLogger(ctx).Error("load status", zap.Error(err))
			ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "status unavailable"})
			return
		}

		ctx.JSON(http.StatusOK, st)
	})

	return server
}

// RunServer serves router on addr until ctx is done
func RunServer(ctx context.Context, addr string, router http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Logger.Error("shutdown http server", zap.Error(err))
		}
	}()

	log.Logger.Info("listening on http", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server exit")
	}

	return nil
}

// StartedAt formats the process start time for Status
func StartedAt() string {
	return startedAt
}

var startedAt = gutils.Clock.GetUTCNow().Format(time.RFC3339)
