package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sealdrop/sealdrop/internal/common"
	"github.com/sealdrop/sealdrop/internal/server/models"
	"github.com/sealdrop/sealdrop/internal/server/services"
)

// --- request/response DTOs ---

type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	PublicKey string `json:"publicKey"`
}

type registerResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Fingerprint string `json:"fingerprint"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type publicKeyResponse struct {
	Username    string `json:"username"`
	PublicKey   string `json:"publicKey"`
	Fingerprint string `json:"fingerprint"`
}

type packageResponse struct {
	ID               string    `json:"id"`
	SenderID         string    `json:"senderId"`
	RecipientID      string    `json:"recipientId"`
	OriginalFilename string    `json:"originalFilename"`
	Size             int64     `json:"size"`
	MimeType         string    `json:"mimeType"`
	CreatedAt        time.Time `json:"createdAt"`
}

type presignResponse struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toPackageResponse(p *models.Package) packageResponse {
	return packageResponse{
		ID:               p.ID,
		SenderID:         p.SenderID,
		RecipientID:      p.RecipientID,
		OriginalFilename: p.OriginalFilename,
		Size:             p.Size,
		MimeType:         p.MimeType,
		CreatedAt:        p.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps service-layer sentinel errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrRefreshTokenExpired),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, common.ErrKeyMaterialRejected):
		writeError(w, http.StatusBadRequest, "key material rejected")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// --- handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Username == "" || req.Password == "" || req.PublicKey == "" {
		writeError(w, http.StatusBadRequest, "missing required fields: username, password, publicKey")
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, req.Password, req.PublicKey)
	if err != nil {
		if errors.Is(err, common.ErrKeyMaterialRejected) {
			writeServiceError(w, err)
			return
		}
		s.logger.Error(r.Context(), "register failed", "error", err.Error())
		writeError(w, http.StatusBadRequest, "registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		ID:          user.ID,
		Username:    user.UserName,
		Fingerprint: user.Fingerprint,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	pair, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrRefreshTokenExpired) {
			writeServiceError(w, err)
			return
		}
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	writeJSON(w, http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *Server) handleGetPublicKey(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	user, err := s.users.GetPublicKey(r.Context(), username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, publicKeyResponse{
		Username:    user.UserName,
		PublicKey:   user.PublicKey,
		Fingerprint: user.Fingerprint,
	})
}

// handleUpload accepts a multipart form with an "archive" file part and
// "recipient", "filename", "size", "mimeType" fields.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxArchiveSize)
	if err := r.ParseMultipartForm(s.maxArchiveSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "archive too large or malformed form")
		return
	}

	recipient := r.FormValue("recipient")
	if recipient == "" {
		writeError(w, http.StatusBadRequest, "missing required field: recipient")
		return
	}

	size, _ := strconv.ParseInt(r.FormValue("size"), 10, 64)
	meta := services.UploadMeta{
		OriginalFilename: r.FormValue("filename"),
		Size:             size,
		MimeType:         r.FormValue("mimeType"),
	}

	file, _, err := r.FormFile("archive")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing archive part")
		return
	}
	defer file.Close()

	archive, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "error reading archive")
		return
	}

	pkg, err := s.packages.Upload(r.Context(), userID, recipient, archive, meta)
	if err != nil {
		s.logger.Error(r.Context(), "upload failed", "error", err.Error())
		writeServiceError(w, err)
		return
	}

	s.logger.Info(r.Context(), "package uploaded", "package_id", pkg.ID, "size", len(archive))
	writeJSON(w, http.StatusCreated, toPackageResponse(pkg))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}

	pkgs, err := s.packages.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]packageResponse, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, toPackageResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}

	pkg, blob, err := s.packages.Download(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Length", strconv.Itoa(len(blob)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pkg.ID+".zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}

func (s *Server) handlePresignURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}

	url, err := s.packages.PresignURL(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, presignResponse{URL: url})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}

	if err := s.packages.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
