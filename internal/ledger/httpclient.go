package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/sealdrop/internal/common"
	"github.com/dmitrijs2005/sealdrop/internal/logging"
)

// UploadChunkSize is the payload slice submitted per request. Progress is
// reported after each chunk.
const UploadChunkSize = 256 * 1024

var errPending = errors.New("transaction not confirmed yet")

// HTTPClient talks to the ledger's HTTP gateways.
//
// Gateways is an ordered fallback list: reads try each in turn. Writes are
// signed locally when a Signer is present; otherwise (or when every direct
// submission fails) they go through the delegated upload endpoint, which
// performs the same operation server-side.
type HTTPClient struct {
	gateways []string
	signer   Signer
	delegate *DelegateUploader
	policy   FallbackPolicy
	http     *http.Client
	log      logging.Logger

	// confirmation polling applied after each successful submission
	confirmTimeout  time.Duration
	confirmInterval time.Duration
}

type HTTPClientOptions struct {
	Gateways        []string
	Signer          Signer
	Delegate        *DelegateUploader
	Policy          FallbackPolicy
	ConfirmTimeout  time.Duration
	ConfirmInterval time.Duration
	HTTPClient      *http.Client
}

func NewHTTPClient(opts HTTPClientOptions, log logging.Logger) (*HTTPClient, error) {
	if len(opts.Gateways) == 0 {
		return nil, fmt.Errorf("%w: no gateways configured", common.ErrInvalidArgument)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	policy := opts.Policy
	if policy.Rounds == 0 {
		policy = DefaultFallbackPolicy()
	}
	confirmTimeout := opts.ConfirmTimeout
	if confirmTimeout == 0 {
		confirmTimeout = 2 * time.Minute
	}
	confirmInterval := opts.ConfirmInterval
	if confirmInterval == 0 {
		confirmInterval = 5 * time.Second
	}
	return &HTTPClient{
		gateways:        opts.Gateways,
		signer:          opts.Signer,
		delegate:        opts.Delegate,
		policy:          policy,
		http:            hc,
		log:             log,
		confirmTimeout:  confirmTimeout,
		confirmInterval: confirmInterval,
	}, nil
}

func (c *HTTPClient) Upload(ctx context.Context, payload []byte, tags []Tag, onProgress ProgressFunc) (string, error) {
	contentID, err := c.uploadDirect(ctx, payload, tags, onProgress)
	if err != nil {
		if c.delegate == nil {
			return "", err
		}
		c.log.Warn(ctx, "direct upload failed, using delegated endpoint", "error", err)
		contentID, err = c.delegate.Upload(ctx, payload, tags)
		if err != nil {
			return "", err
		}
		if onProgress != nil {
			onProgress(100)
		}
	}

	if err := c.WaitForConfirmation(ctx, contentID, c.confirmTimeout, c.confirmInterval); err != nil {
		if errors.Is(err, common.ErrConfirmationTimeout) {
			// Non-fatal: the write frequently still lands after the poll
			// window closes.
			c.log.Warn(ctx, "confirmation poll timed out, returning content id anyway", "content_id", contentID)
			return contentID, nil
		}
		return "", err
	}
	return contentID, nil
}

func (c *HTTPClient) uploadDirect(ctx context.Context, payload []byte, tags []Tag, onProgress ProgressFunc) (string, error) {
	if c.signer == nil {
		return "", common.ErrSignerUnavailable
	}

	dataHash := sha256Sum(payload)
	msg := signingMessage(c.signer.PublicKey(), tags, int64(len(payload)), dataHash)
	sig, err := c.signer.Sign(msg)
	if err != nil {
		return "", fmt.Errorf("signing transaction: %w", err)
	}

	tx := transaction{
		ID:        transactionID(sig),
		Owner:     base64.RawURLEncoding.EncodeToString(c.signer.PublicKey()),
		Tags:      tags,
		DataSize:  int64(len(payload)),
		DataHash:  base64.RawURLEncoding.EncodeToString(dataHash),
		Signature: base64.RawURLEncoding.EncodeToString(sig),
	}

	gateway, err := c.submitHeader(ctx, tx)
	if err != nil {
		return "", err
	}

	for offset := 0; offset < len(payload); offset += UploadChunkSize {
		end := offset + UploadChunkSize
		if end > len(payload) {
			end = len(payload)
		}
		chunk := chunkUpload{
			ID:     tx.ID,
			Offset: int64(offset),
			Data:   base64.StdEncoding.EncodeToString(payload[offset:end]),
		}
		if err := c.postJSON(ctx, gateway+"/chunk", chunk, nil); err != nil {
			return "", fmt.Errorf("submitting chunk at %d: %w", offset, err)
		}
		if onProgress != nil {
			onProgress(end * 100 / len(payload))
		}
	}
	if len(payload) == 0 && onProgress != nil {
		onProgress(100)
	}
	return tx.ID, nil
}

// submitHeader posts the transaction header, walking the gateway list so a
// down primary does not block writes. Returns the gateway that accepted the
// header; chunks must go to the same one.
func (c *HTTPClient) submitHeader(ctx context.Context, tx transaction) (string, error) {
	var lastErr error
	for _, gateway := range c.gateways {
		if err := c.postJSON(ctx, gateway+"/tx", tx, nil); err != nil {
			lastErr = err
			continue
		}
		return gateway, nil
	}
	return "", fmt.Errorf("submitting transaction: %w", lastErr)
}

func (c *HTTPClient) Fetch(ctx context.Context, contentID string) ([]byte, []Tag, error) {
	var payload []byte
	var tags []Tag

	err := retry.Do(ctx, c.policy.backoff(), func(ctx context.Context) error {
		var lastErr error
		for _, gateway := range c.gateways {
			p, t, err := c.fetchFrom(ctx, gateway, contentID)
			if err != nil {
				lastErr = err
				continue
			}
			payload, tags = p, t
			return nil
		}
		return retry.RetryableError(lastErr)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", common.ErrRetrievalFailed, err)
	}
	return payload, tags, nil
}

func (c *HTTPClient) fetchFrom(ctx context.Context, gateway, contentID string) ([]byte, []Tag, error) {
	var tx transaction
	if err := c.getJSON(ctx, gateway+"/tx/"+contentID, &tx); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, gateway+"/tx/"+contentID+"/data", nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("gateway %s: %s", gateway, resp.Status)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	if len(payload) == 0 {
		return nil, nil, fmt.Errorf("gateway %s: empty payload", gateway)
	}
	return payload, tx.Tags, nil
}

func (c *HTTPClient) WaitForConfirmation(ctx context.Context, contentID string, timeout, interval time.Duration) error {
	err := retry.Do(ctx, retry.WithMaxDuration(timeout, retry.NewConstant(interval)), func(ctx context.Context) error {
		confirmed, err := c.confirmed(ctx, contentID)
		if err != nil {
			return retry.RetryableError(err)
		}
		if !confirmed {
			return retry.RetryableError(errPending)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrConfirmationTimeout, err)
	}
	return nil
}

func (c *HTTPClient) confirmed(ctx context.Context, contentID string) (bool, error) {
	var lastErr error
	for _, gateway := range c.gateways {
		var status txStatus
		if err := c.getJSON(ctx, gateway+"/tx/"+contentID+"/status", &status); err != nil {
			lastErr = err
			continue
		}
		return status.Confirmed != nil, nil
	}
	return false, lastErr
}

func (c *HTTPClient) Search(ctx context.Context, query SearchQuery) (*SearchResult, error) {
	var result SearchResult
	err := retry.Do(ctx, c.policy.backoff(), func(ctx context.Context) error {
		var lastErr error
		for _, gateway := range c.gateways {
			if err := c.postJSON(ctx, gateway+"/search", query, &result); err != nil {
				lastErr = err
				continue
			}
			return nil
		}
		return retry.RetryableError(lastErr)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrRetrievalFailed, err)
	}
	return &result, nil
}

func (p FallbackPolicy) backoff() retry.Backoff {
	pause := p.Backoff
	if pause <= 0 {
		// go-retry requires a positive interval; this keeps rounds
		// effectively immediate.
		pause = time.Millisecond
	}
	rounds := p.Rounds
	if rounds == 0 {
		rounds = 1
	}
	return retry.WithMaxRetries(rounds-1, retry.NewConstant(pause))
}

func (c *HTTPClient) postJSON(ctx context.Context, url string, body, out any) error {
	enc, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(enc))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, out)
}

func (c *HTTPClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *HTTPClient) doJSON(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", common.ErrNotFound, req.URL.Path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %s; body: %s", req.Method, req.URL.Path, resp.Status, string(b))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
