// Package netx contains small HTTP helpers for talking to object
// storage through presigned URLs, keeping the callers free of any S3
// awareness.
package netx

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxDownloadSize caps how much body a presigned download will buffer.
// Legitimate archives are bounded by the server's upload limit; anything
// past this is a hostile or corrupted object.
const MaxDownloadSize = 256 << 20

// ErrResponseTooLarge is returned when a download body exceeds
// MaxDownloadSize.
var ErrResponseTooLarge = errors.New("response body exceeds size limit")

// DownloadFromPresignedURL fetches a blob through a presigned GET URL
// issued by the server. The URL already carries its own authorization,
// so no headers are added. Bodies larger than MaxDownloadSize are
// rejected.
func DownloadFromPresignedURL(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}

	if resp.ContentLength > MaxDownloadSize {
		return nil, ErrResponseTooLarge
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxDownloadSize {
		return nil, ErrResponseTooLarge
	}
	return body, nil
}
