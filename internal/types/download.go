package types

import "time"

// DownloadTokenRequest is the body of POST /download/token.
type DownloadTokenRequest struct {
	DocumentID        string `json:"document_id" binding:"required"`
	ExpirationMinutes int    `json:"expiration_minutes"`
}

// DownloadTokenResponse is the response to POST /download/token.
type DownloadTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DownloadFileRequest is the body of POST /download/file.
type DownloadFileRequest struct {
	Token string `json:"token" binding:"required"`
}
