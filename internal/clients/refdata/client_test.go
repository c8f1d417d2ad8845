package refdata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynconv/analyzer/internal/database"
)

func TestFetchBatch(t *testing.T) {
	var gotReq batchRequest
	var gotAPIKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/reference", r.URL.Path)
		gotAPIKey = r.Header.Get("X-API-KEY")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		// Unknown identifiers are simply omitted from the response.
		json.NewEncoder(w).Encode(batchResponse{Data: map[string]Fields{
			"ACME US Equity": {
				FieldExpectedReportDate: "2026-09-12",
				FieldExpectedReportTime: "08:00",
			},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", zerolog.Nop())

	data, err := c.FetchBatch(context.Background(), []string{"ACME US Equity", "UNKNOWN Equity", ""}, []string{FieldExpectedReportDate, FieldExpectedReportTime})
	require.NoError(t, err)

	assert.Equal(t, "secret", gotAPIKey)
	assert.Equal(t, []string{"ACME US Equity", "UNKNOWN Equity"}, gotReq.Securities)
	assert.Equal(t, []string{FieldExpectedReportDate, FieldExpectedReportTime}, gotReq.Fields)

	require.Contains(t, data, "ACME US Equity")
	assert.Equal(t, "2026-09-12", data["ACME US Equity"].String(FieldExpectedReportDate))
	assert.NotContains(t, data, "UNKNOWN Equity")
}

func TestFetchBatch_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(batchResponse{Error: "field not entitled"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", zerolog.Nop(), WithMaxAttempts(1))

	_, err := c.FetchBatch(context.Background(), []string{"ACME US Equity"}, []string{FieldExpectedReportDate})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field not entitled")
}

func TestFetchBatch_RetriesThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(batchResponse{Data: map[string]Fields{
			"ACME US Equity": {FieldExpectedReportDate: "2026-09-12"},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", zerolog.Nop(), WithMaxAttempts(2))

	data, err := c.FetchBatch(context.Background(), []string{"ACME US Equity"}, []string{FieldExpectedReportDate})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Contains(t, data, "ACME US Equity")
}

func TestFetchBatch_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", zerolog.Nop(), WithMaxAttempts(1))

	_, err := c.FetchBatch(context.Background(), []string{"ACME US Equity"}, []string{FieldExpectedReportDate})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Contains(t, err.Error(), "after 1 attempts")
}

func TestFetchBatch_CacheHitSkipsRequest(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		json.NewEncoder(w).Encode(batchResponse{Data: map[string]Fields{
			"ACME US Equity": {FieldExpectedReportDate: "2026-09-12"},
		}})
	}))
	defer srv.Close()

	db, err := database.NewInMemory()
	require.NoError(t, err)
	defer db.Close()

	cache, err := NewCache(db)
	require.NoError(t, err)

	c := NewClient(srv.URL, "", zerolog.Nop(), WithCache(cache, time.Hour))

	for i := 0; i < 2; i++ {
		data, err := c.FetchBatch(context.Background(), []string{"ACME US Equity"}, []string{FieldExpectedReportDate})
		require.NoError(t, err)
		assert.Equal(t, "2026-09-12", data["ACME US Equity"].String(FieldExpectedReportDate))
	}

	assert.Equal(t, 1, requests, "second fetch must be served from the cache")
}

func TestFieldsString(t *testing.T) {
	f := Fields{"s": "hello", "n": float64(42), "nil": nil}

	assert.Equal(t, "hello", f.String("s"))
	assert.Equal(t, "42", f.String("n"))
	assert.Equal(t, "", f.String("nil"))
	assert.Equal(t, "", f.String("absent"))
}
