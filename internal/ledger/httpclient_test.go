package ledger

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sealdrop/internal/common"
	"github.com/dmitrijs2005/sealdrop/internal/logging"
)

// fakeGateway is an in-memory ledger gateway for tests.
type fakeGateway struct {
	mu        sync.Mutex
	txs       map[string]transaction
	data      map[string][]byte
	confirmed map[string]bool
	failAll   bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		txs:       map[string]transaction{},
		data:      map[string][]byte{},
		confirmed: map[string]bool{},
	}
}

func (g *fakeGateway) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		defer g.mu.Unlock()

		if g.failAll {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/tx":
			var tx transaction
			require.NoError(t, json.NewDecoder(r.Body).Decode(&tx))
			g.txs[tx.ID] = tx
			g.data[tx.ID] = nil
			w.WriteHeader(http.StatusOK)

		case r.Method == http.MethodPost && r.URL.Path == "/chunk":
			var c chunkUpload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&c))
			chunk, err := base64.StdEncoding.DecodeString(c.Data)
			require.NoError(t, err)
			g.data[c.ID] = append(g.data[c.ID], chunk...)
			w.WriteHeader(http.StatusOK)

		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/status"):
			id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/tx/"), "/status")
			var st txStatus
			if g.confirmed[id] {
				st.Confirmed = &struct {
					BlockHeight int64 `json:"block_height"`
				}{BlockHeight: 1}
			}
			_ = json.NewEncoder(w).Encode(st)

		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/data"):
			id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/tx/"), "/data")
			payload, ok := g.data[id]
			if !ok {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write(payload)

		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/tx/"):
			id := strings.TrimPrefix(r.URL.Path, "/tx/")
			tx, ok := g.txs[id]
			if !ok {
				http.NotFound(w, r)
				return
			}
			_ = json.NewEncoder(w).Encode(tx)

		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestSigner(t *testing.T) *KeySigner {
	t.Helper()
	s, err := NewKeySignerFromSeed(strings.Repeat("ab", 32))
	require.NoError(t, err)
	return s
}

func newClient(t *testing.T, opts HTTPClientOptions) *HTTPClient {
	t.Helper()
	if opts.ConfirmTimeout == 0 {
		opts.ConfirmTimeout = 300 * time.Millisecond
	}
	if opts.ConfirmInterval == 0 {
		opts.ConfirmInterval = 20 * time.Millisecond
	}
	c, err := NewHTTPClient(opts, logging.NewNop())
	require.NoError(t, err)
	return c
}

func TestUpload_ChunksAndProgress(t *testing.T) {
	gw := newFakeGateway()
	srv := gw.server(t)

	c := newClient(t, HTTPClientOptions{
		Gateways: []string{srv.URL},
		Signer:   newTestSigner(t),
	})

	payload := make([]byte, UploadChunkSize+100)
	for i := range payload {
		payload[i] = byte(i)
	}

	var progress []int
	done := make(chan struct{})
	go func() {
		// confirm the transaction once it shows up so Upload's poll finishes fast
		defer close(done)
		for {
			gw.mu.Lock()
			for id := range gw.txs {
				gw.confirmed[id] = true
			}
			n := len(gw.confirmed)
			gw.mu.Unlock()
			if n > 0 {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}()

	id, err := c.Upload(context.Background(), payload, []Tag{{Name: "App-Name", Value: "sealdrop"}}, func(pct int) {
		progress = append(progress, pct)
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	<-done

	assert.Equal(t, payload, gw.data[id])
	require.Len(t, progress, 2)
	assert.Less(t, progress[0], 100)
	assert.Equal(t, 100, progress[1])
}

func TestUpload_ConfirmationTimeoutIsNonFatal(t *testing.T) {
	gw := newFakeGateway() // never confirms
	srv := gw.server(t)

	c := newClient(t, HTTPClientOptions{
		Gateways: []string{srv.URL},
		Signer:   newTestSigner(t),
	})

	id, err := c.Upload(context.Background(), []byte("data"), nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestUpload_NoSignerNoDelegate(t *testing.T) {
	gw := newFakeGateway()
	srv := gw.server(t)

	c := newClient(t, HTTPClientOptions{Gateways: []string{srv.URL}})

	_, err := c.Upload(context.Background(), []byte("data"), nil, nil)
	require.ErrorIs(t, err, common.ErrSignerUnavailable)
}

func TestUpload_FallsBackToDelegate(t *testing.T) {
	secret := []byte("shared-secret")

	delegate := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		require.True(t, strings.HasPrefix(auth, "Bearer "))

		token, err := jwt.Parse(strings.TrimPrefix(auth, "Bearer "), func(*jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		require.NoError(t, err)
		require.True(t, token.Valid)

		var req delegateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(delegateResponse{ID: "delegated-id"})
	}))
	defer delegate.Close()

	gw := newFakeGateway()
	srv := gw.server(t)

	c := newClient(t, HTTPClientOptions{
		Gateways: []string{srv.URL},
		Delegate: NewDelegateUploader(delegate.URL, "alice", secret, nil),
	})

	var progress []int
	id, err := c.Upload(context.Background(), []byte("data"), nil, func(pct int) {
		progress = append(progress, pct)
	})
	require.NoError(t, err)
	assert.Equal(t, "delegated-id", id)
	assert.Equal(t, []int{100}, progress)
}

func TestFetch_FallsBackToSecondGateway(t *testing.T) {
	broken := newFakeGateway()
	broken.failAll = true
	brokenSrv := broken.server(t)

	gw := newFakeGateway()
	srv := gw.server(t)

	c := newClient(t, HTTPClientOptions{
		Gateways: []string{brokenSrv.URL, srv.URL},
		Signer:   newTestSigner(t),
	})

	// seed a transaction on the healthy gateway
	gw.txs["tx-1"] = transaction{ID: "tx-1", Tags: []Tag{{Name: "Sender", Value: "alice"}}}
	gw.data["tx-1"] = []byte("payload")

	payload, tags, err := c.Fetch(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), payload)
	require.Len(t, tags, 1)
	assert.Equal(t, "alice", tags[0].Value)
}

func TestFetch_AllGatewaysFail(t *testing.T) {
	broken := newFakeGateway()
	broken.failAll = true
	srv := broken.server(t)

	c := newClient(t, HTTPClientOptions{
		Gateways: []string{srv.URL, srv.URL},
		Policy:   FallbackPolicy{Rounds: 2},
	})

	_, _, err := c.Fetch(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrRetrievalFailed)
}

func TestWaitForConfirmation_Timeout(t *testing.T) {
	gw := newFakeGateway()
	srv := gw.server(t)

	c := newClient(t, HTTPClientOptions{Gateways: []string{srv.URL}})

	err := c.WaitForConfirmation(context.Background(), "tx-x", 100*time.Millisecond, 20*time.Millisecond)
	require.ErrorIs(t, err, common.ErrConfirmationTimeout)
}

func TestWaitForConfirmation_Confirmed(t *testing.T) {
	gw := newFakeGateway()
	gw.confirmed["tx-1"] = true
	srv := gw.server(t)

	c := newClient(t, HTTPClientOptions{Gateways: []string{srv.URL}})

	err := c.WaitForConfirmation(context.Background(), "tx-1", time.Second, 10*time.Millisecond)
	require.NoError(t, err)
}
