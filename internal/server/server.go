// Package server exposes the inference function over HTTP. It is a thin
// layer: all classification logic lives in the inference package.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/harperclay/rfmflow/internal/inference"
)

// Server serves predictions from the currently loaded inference context.
// The context is read through a Swapper so artifact reloads swap a
// reference instead of mutating loaded state under concurrent requests.
type Server struct {
	swapper *inference.Swapper
	handler http.Handler
}

// New builds the HTTP surface around a context swapper.
func New(swapper *inference.Swapper) *Server {
	s := &Server{swapper: swapper}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.handleHealth)
	router.GET("/api/segments", s.handleSegments)
	router.POST("/api/predict", s.handlePredict)

	s.handler = cors.Default().Handler(router)
	return s
}

// Handler returns the root HTTP handler, including CORS middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
