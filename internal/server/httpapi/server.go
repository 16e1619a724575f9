// Package httpapi exposes the SealDrop server over HTTP/JSON. Sealed
// archives travel as multipart uploads and opaque binary downloads; all
// other payloads are JSON.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/sealdrop/sealdrop/internal/logging"
	"github.com/sealdrop/sealdrop/internal/server/models"
	"github.com/sealdrop/sealdrop/internal/server/services"
)

// UserProvider is the slice of UserService the HTTP layer needs.
type UserProvider interface {
	Register(ctx context.Context, username, password, publicKeyPEM string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	GetPublicKey(ctx context.Context, username string) (*models.User, error)
}

// PackageProvider is the slice of PackageService the HTTP layer needs.
type PackageProvider interface {
	Upload(ctx context.Context, senderID, recipientName string, archive []byte, meta services.UploadMeta) (*models.Package, error)
	List(ctx context.Context, userID string) ([]*models.Package, error)
	Download(ctx context.Context, userID, packageID string) (*models.Package, []byte, error)
	PresignURL(ctx context.Context, userID, packageID string) (string, error)
	Delete(ctx context.Context, userID, packageID string) error
}

type Server struct {
	address        string
	logger         logging.Logger
	users          UserProvider
	packages       PackageProvider
	jwtSecret      []byte
	maxArchiveSize int64
}

func NewServer(address string, l logging.Logger, us UserProvider, ps PackageProvider, secretKey string, maxArchiveSize int64) *Server {
	return &Server{
		address:        address,
		logger:         l.With("module", "http_server"),
		users:          us,
		packages:       ps,
		jwtSecret:      []byte(secretKey),
		maxArchiveSize: maxArchiveSize,
	}
}

// Handler builds the route table. Everything under /api/v1 except
// registration and session endpoints requires a Bearer access token.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/v1/users", s.handleRegister)
	mux.HandleFunc("POST /api/v1/sessions", s.handleLogin)
	mux.HandleFunc("POST /api/v1/sessions/refresh", s.handleRefresh)

	mux.Handle("GET /api/v1/users/{username}/key", s.requireAuth(s.handleGetPublicKey))
	mux.Handle("POST /api/v1/packages", s.requireAuth(s.handleUpload))
	mux.Handle("GET /api/v1/packages", s.requireAuth(s.handleList))
	mux.Handle("GET /api/v1/packages/{id}/archive", s.requireAuth(s.handleArchive))
	mux.Handle("GET /api/v1/packages/{id}/url", s.requireAuth(s.handlePresignURL))
	mux.Handle("DELETE /api/v1/packages/{id}", s.requireAuth(s.handleDelete))

	return mux
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
