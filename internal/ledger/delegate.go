package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DelegateUploader submits a payload through a remote endpoint that signs and
// uploads server-side. It is the write path for callers that have no local
// signing key, and the fallback when direct submission fails.
type DelegateUploader struct {
	endpoint string
	identity string
	secret   []byte
	http     *http.Client
}

func NewDelegateUploader(endpoint, identity string, secret []byte, hc *http.Client) *DelegateUploader {
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	return &DelegateUploader{endpoint: endpoint, identity: identity, secret: secret, http: hc}
}

type delegateRequest struct {
	Data string `json:"data"` // base64 payload
	Tags []Tag  `json:"tags"`
}

type delegateResponse struct {
	ID string `json:"id"`
}

// bearerToken mints a short-lived HS256 token naming the uploading identity.
func (d *DelegateUploader) bearerToken() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": d.identity,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(time.Minute).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(d.secret)
}

func (d *DelegateUploader) Upload(ctx context.Context, payload []byte, tags []Tag) (string, error) {
	token, err := d.bearerToken()
	if err != nil {
		return "", fmt.Errorf("minting upload token: %w", err)
	}

	body, err := json.Marshal(delegateRequest{
		Data: base64.StdEncoding.EncodeToString(payload),
		Tags: tags,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint+"/upload", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := d.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("delegated upload: %s; body: %s", resp.Status, string(b))
	}

	var out delegateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.ID, nil
}
