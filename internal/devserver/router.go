package devserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"deskbridge/internal/infrastructure/logging"
	"deskbridge/internal/types"
)

// Commands is the command surface served over HTTP. *app.App implements it.
type Commands interface {
	ClassifyPaths(paths []string) types.Result
	GetActiveSelection() types.Result
	SendHTTPRequest(req types.APIRequest) types.Result
}

type classifyRequest struct {
	Paths []string `json:"paths"`
}

type router struct {
	commands Commands
}

// NewRouter exposes commands for UI work in a plain browser. Command outcomes
// are always HTTP 200 with the Result envelope; malformed input is a 400 with
// a failure envelope.
func NewRouter(commands Commands, logger logging.Logger) *gin.Engine {
	r := &router{commands: commands}
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger), corsMiddleware())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	api := engine.Group("/api")
	{
		api.POST("/classify-paths", r.classifyPaths)
		api.GET("/active-selection", r.activeSelection)
		api.POST("/http-request", r.httpRequest)
	}
	return engine
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("Dev server request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}

func (r *router) classifyPaths(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.Failure("invalid request body: "+err.Error(), nil))
		return
	}
	c.JSON(http.StatusOK, r.commands.ClassifyPaths(req.Paths))
}

func (r *router) activeSelection(c *gin.Context) {
	c.JSON(http.StatusOK, r.commands.GetActiveSelection())
}

func (r *router) httpRequest(c *gin.Context) {
	var req types.APIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.Failure("invalid request body: "+err.Error(), nil))
		return
	}
	c.JSON(http.StatusOK, r.commands.SendHTTPRequest(req))
}

// Serve runs handler on addr until ctx ends, then shuts down gracefully
func Serve(ctx context.Context, addr string, handler http.Handler, logger logging.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Dev server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("Dev server stopped")
		return nil
	}
}
