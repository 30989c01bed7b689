package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Idem provides an Idempotency-Key middleware backed by Redis.
//
// A key is claimed before the handler runs. A 2xx response is stored under
// the key and replayed to later requests carrying the same key and body.
// Any other outcome releases the claim so the client can retry.
type Idem struct {
	R   *redis.Client
	TTL time.Duration
}

const (
	idemHeader       = "Idempotency-Key"
	idemReplayHeader = "Idempotent-Replayed"
)

// idemRecord is the value kept under a claimed key. Status is zero while
// the first request is still running.
type idemRecord struct {
	BodyHash    string `json:"bodyHash"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Keys are scoped to the method, path and caller, so the same header value
// sent to two endpoints or by two admins never collides.
func idemKey(r *http.Request, header string) string {
	actor, _ := UserID(r.Context())
	scope := strings.Join([]string{r.Method, r.URL.Path, actor, header}, "\n")
	return "idem:" + Sha256Hex(scope)
}

func (i Idem) ttl() time.Duration {
	if i.TTL <= 0 {
		return 24 * time.Hour
	}
	return i.TTL
}

// Middleware enforces idempotency semantics for write endpoints.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get(idemHeader))
		if header == "" || i.R == nil {
			next.ServeHTTP(w, r)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "unreadable request body", nil)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		ctx := r.Context()
		key := idemKey(r, header)
		bodyHash := Sha256Hex(string(body))
		pending, err := json.Marshal(idemRecord{BodyHash: bodyHash})
		if err != nil {
			idemStoreError(w)
			return
		}
		claimed, err := i.R.SetNX(ctx, key, pending, i.ttl()).Result()
		if err != nil {
			idemStoreError(w)
			return
		}
		if !claimed {
			i.replay(w, r, key, bodyHash)
			return
		}

		// The claim must be settled even when the client goes away.
		settleCtx := context.WithoutCancel(ctx)
		rec := &idemRecorder{ResponseWriter: w}
		defer func() {
			if p := recover(); p != nil {
				_ = i.R.Del(settleCtx, key).Err()
				panic(p)
			}
		}()
		next.ServeHTTP(rec, r)

		status := rec.statusCode()
		if status < 200 || status >= 300 {
			_ = i.R.Del(settleCtx, key).Err()
			return
		}
		done, err := json.Marshal(idemRecord{
			BodyHash:    bodyHash,
			Status:      status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
		})
		if err != nil {
			_ = i.R.Del(settleCtx, key).Err()
			return
		}
		if err := i.R.Set(settleCtx, key, done, i.ttl()).Err(); err != nil {
			_ = i.R.Del(settleCtx, key).Err()
		}
	})
}

func (i Idem) replay(w http.ResponseWriter, r *http.Request, key, bodyHash string) {
	raw, err := i.R.Get(r.Context(), key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		// Released between SetNX and Get: the first attempt failed.
		JSONError(w, http.StatusConflict, "IDEMPOTENT_RETRY", "previous attempt failed, retry the request", nil)
		return
	case err != nil:
		idemStoreError(w)
		return
	}
	var stored idemRecord
	if err := json.Unmarshal(raw, &stored); err != nil {
		idemStoreError(w)
		return
	}
	if stored.BodyHash != bodyHash {
		JSONError(w, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED", "idempotency key was used with a different payload", nil)
		return
	}
	if stored.Status == 0 {
		JSONError(w, http.StatusConflict, "IDEMPOTENT_IN_PROGRESS", "an identical request is still being processed", nil)
		return
	}
	if stored.ContentType != "" {
		w.Header().Set("Content-Type", stored.ContentType)
	}
	w.Header().Set(idemReplayHeader, "true")
	w.Header().Set("Content-Length", strconv.Itoa(len(stored.Body)))
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}

func idemStoreError(w http.ResponseWriter) {
	JSONError(w, http.StatusServiceUnavailable, "DATA_UNAVAILABLE", "idempotency store unavailable", nil)
}

// idemRecorder passes the response through while keeping a copy.
type idemRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *idemRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *idemRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(p)
	return r.ResponseWriter.Write(p)
}

func (r *idemRecorder) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}
