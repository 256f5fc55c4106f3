package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/pkg/errors"
	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/pkg/httpclient"
)

// PresignRequest asks the backend for a presigned upload slot.
type PresignRequest struct {
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	ExpiresIn   int    `json:"expiresIn"`
}

// PresignResponse carries the presigned PUT target. Headers must be sent
// verbatim on the upload or the storage service rejects the signature.
type PresignResponse struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
	Key     string            `json:"key"`
}

// presignExpirySeconds bounds how long an issued upload URL stays valid.
const presignExpirySeconds = 600

// PresignUpload obtains a presigned upload URL for the given object key.
func (c *Client) PresignUpload(ctx context.Context, key, contentType string) (*PresignResponse, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/files/presign-upload", PresignRequest{
		Key:         key,
		ContentType: contentType,
		ExpiresIn:   presignExpirySeconds,
	})
	if err != nil {
		return nil, err
	}

	var out PresignResponse
	if err := c.doJSON(ctx, req, &out); err != nil {
		return nil, err
	}
	if out.URL == "" {
		return nil, fmt.Errorf("presign response missing upload URL")
	}
	if out.Key == "" {
		out.Key = key
	}
	return &out, nil
}

// UploadProfileImage uploads a profile image for the given user: presign,
// PUT to the storage URL with the returned headers, then derive the public
// URL from the configured asset base. The PUT goes through the plain upload
// client so the API bearer token never reaches the storage service.
func (c *Client) UploadProfileImage(ctx context.Context, userID, contentType string, data io.Reader) (string, error) {
	if userID == "" {
		return "", apperrors.InvalidInput("user id is required")
	}
	ext := "jpg"
	if i := strings.IndexByte(contentType, '/'); i >= 0 && i+1 < len(contentType) {
		ext = contentType[i+1:]
	}
	key := fmt.Sprintf("users/%s/profile.%s", userID, ext)

	presigned, err := c.PresignUpload(ctx, key, contentType)
	if err != nil {
		return "", err
	}

	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, presigned.URL, data)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	for k, v := range presigned.Headers {
		putReq.Header.Set(k, v)
	}

	resp, err := c.uploads.Do(ctx, putReq)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", httpclient.ParseResponseError(resp)
	}
	_ = resp.Body.Close()

	if c.assetBase != "" {
		return c.assetBase + "/" + presigned.Key, nil
	}
	return presigned.Key, nil
}
