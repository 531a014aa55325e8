package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Server 运维侧的只读查询和手动触发入口
type Server struct {
	srv *http.Server
}

func NewServer(addr string, handlers *Handlers) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", handlers.Health)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/monitoring/run", handlers.RunMonitors)
		v1.GET("/monitoring/monitors", handlers.ListMonitors)
		v1.GET("/monitoring/notices", handlers.ListNotices)
		v1.GET("/alerts/recent", handlers.RecentAlerts)
	}

	return &Server{
		srv: &http.Server{
			Addr:    addr,
			Handler: router,
		},
	}
}

// Start 阻塞到 ctx 取消, 然后优雅关闭
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("web server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("web server stopped")
	return ctx.Err()
}
