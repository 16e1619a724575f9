// Package transport implements the HTTP client for the SealDrop server
// API. It owns the token pair and transparently refreshes an expired
// access token once per request.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/sealdrop/sealdrop/internal/common"
)

// PackageInfo mirrors the server's package listing payload.
type PackageInfo struct {
	ID               string    `json:"id"`
	SenderID         string    `json:"senderId"`
	RecipientID      string    `json:"recipientId"`
	OriginalFilename string    `json:"originalFilename"`
	Size             int64     `json:"size"`
	MimeType         string    `json:"mimeType"`
	CreatedAt        time.Time `json:"createdAt"`
}

// RegisterResult is returned by Register.
type RegisterResult struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Fingerprint string `json:"fingerprint"`
}

// PublicKeyResult is returned by GetPublicKey.
type PublicKeyResult struct {
	Username    string `json:"username"`
	PublicKey   string `json:"publicKey"`
	Fingerprint string `json:"fingerprint"`
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type apiError struct {
	Error string `json:"error"`
}

// Client talks to the SealDrop HTTP API.
type Client struct {
	baseURL      string
	http         *http.Client
	accessToken  string
	refreshToken string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// IsLoggedIn reports whether the client holds an access token.
func (c *Client) IsLoggedIn() bool { return c.accessToken != "" }

// Logout drops the stored token pair.
func (c *Client) Logout() {
	c.accessToken = ""
	c.refreshToken = ""
}

// Register creates an account on the server.
func (c *Client) Register(ctx context.Context, username, password, publicKeyPEM string) (*RegisterResult, error) {
	var out RegisterResult
	err := c.postJSON(ctx, "/api/v1/users", map[string]string{
		"username":  username,
		"password":  password,
		"publicKey": publicKeyPEM,
	}, &out, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and stores the returned token pair.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var pair tokenPair
	err := c.postJSON(ctx, "/api/v1/sessions", map[string]string{
		"username": username,
		"password": password,
	}, &pair, http.StatusOK)
	if err != nil {
		return err
	}
	c.accessToken, c.refreshToken = pair.AccessToken, pair.RefreshToken
	return nil
}

// Refresh rotates the refresh token and replaces the stored pair.
func (c *Client) Refresh(ctx context.Context) error {
	if c.refreshToken == "" {
		return common.ErrorUnauthorized
	}
	var pair tokenPair
	err := c.postJSON(ctx, "/api/v1/sessions/refresh", map[string]string{
		"refreshToken": c.refreshToken,
	}, &pair, http.StatusOK)
	if err != nil {
		return err
	}
	c.accessToken, c.refreshToken = pair.AccessToken, pair.RefreshToken
	return nil
}

// GetPublicKey fetches the recipient's registered public key.
func (c *Client) GetPublicKey(ctx context.Context, username string) (*PublicKeyResult, error) {
	var out PublicKeyResult
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/users/"+username+"/key", nil, "", &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadPackage sends a sealed archive addressed to recipient.
func (c *Client) UploadPackage(ctx context.Context, recipient string, archive []byte, filename, mimeType string, size int64) (*PackageInfo, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		"recipient": recipient,
		"filename":  filename,
		"mimeType":  mimeType,
		"size":      strconv.FormatInt(size, 10),
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("building form: %w", err)
		}
	}
	fw, err := mw.CreateFormFile("archive", "package.zip")
	if err != nil {
		return nil, fmt.Errorf("building form: %w", err)
	}
	if _, err := fw.Write(archive); err != nil {
		return nil, fmt.Errorf("building form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building form: %w", err)
	}

	var out PackageInfo
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/packages", buf.Bytes(), mw.FormDataContentType(), &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPackages lists the packages addressed to the logged-in user.
func (c *Client) ListPackages(ctx context.Context) ([]PackageInfo, error) {
	var out []PackageInfo
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/packages", nil, "", &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// DownloadArchive fetches the archive blob of a package.
func (c *Client) DownloadArchive(ctx context.Context, packageID string) ([]byte, error) {
	resp, err := c.doAuthed(ctx, http.MethodGet, "/api/v1/packages/"+packageID+"/archive", nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.asError(resp)
	}
	return io.ReadAll(resp.Body)
}

// PresignURL asks the server for a direct download URL.
func (c *Client) PresignURL(ctx context.Context, packageID string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/packages/"+packageID+"/url", nil, "", &out, http.StatusOK); err != nil {
		return "", err
	}
	return out.URL, nil
}

// DeletePackage removes a package and its archive.
func (c *Client) DeletePackage(ctx context.Context, packageID string) error {
	resp, err := c.doAuthed(ctx, http.MethodDelete, "/api/v1/packages/"+packageID, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return c.asError(resp)
	}
	return nil
}

// --- plumbing ---

// postJSON issues an unauthenticated JSON POST.
func (c *Client) postJSON(ctx context.Context, path string, in any, out any, wantStatus int) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return c.asError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// doJSON issues an authenticated request and decodes a JSON response.
func (c *Client) doJSON(ctx context.Context, method, path string, body []byte, contentType string, out any, wantStatus int) error {
	resp, err := c.doAuthed(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return c.asError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// doAuthed sends a request with the Bearer token, refreshing the pair
// once if the server answers 401.
func (c *Client) doAuthed(ctx context.Context, method, path string, body []byte, contentType string) (*http.Response, error) {
	if c.accessToken == "" {
		return nil, common.ErrorUnauthorized
	}

	resp, err := c.send(ctx, method, path, body, contentType)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.refreshToken != "" {
		resp.Body.Close()
		if err := c.Refresh(ctx); err != nil {
			return nil, common.ErrorUnauthorized
		}
		return c.send(ctx, method, path, body, contentType)
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, contentType string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set(common.AuthorizationHeaderName, "Bearer "+c.accessToken)
	return c.http.Do(req)
}

// asError converts a non-success response into a sentinel or wrapped
// error. The body is consumed.
func (c *Client) asError(resp *http.Response) error {
	var e apiError
	_ = json.NewDecoder(resp.Body).Decode(&e)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	default:
		if e.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, e.Error)
		}
		return fmt.Errorf("server error (%d)", resp.StatusCode)
	}
}
