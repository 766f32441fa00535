// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-storage-sync/internal/service"
	"github.com/MKhiriev/go-storage-sync/internal/store"
	"github.com/MKhiriev/go-storage-sync/models"
)

// ── manifest ─────────────────────────────────────────────────────────────────

func TestGetManifest(t *testing.T) {
	t.Run("stored manifest", func(t *testing.T) {
		ts := newTestServer(t)
		ts.storage.EXPECT().
			GetManifest(gomock.Any(), "acc-1").
			Return(models.ManifestEnvelope{Version: 3, Value: []byte("sealed")}, nil)

		rec := ts.do(t, http.MethodGet, "/v1/storage/manifest", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var got models.ManifestEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, uint64(3), got.Version)
		assert.Equal(t, []byte("sealed"), got.Value)
	})

	t.Run("no manifest yet", func(t *testing.T) {
		ts := newTestServer(t)
		ts.storage.EXPECT().
			GetManifest(gomock.Any(), "acc-1").
			Return(models.ManifestEnvelope{}, store.ErrManifestNotFound)

		rec := ts.do(t, http.MethodGet, "/v1/storage/manifest", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetManifestIfNewer(t *testing.T) {
	tests := []struct {
		name       string
		manifest   models.ManifestEnvelope
		err        error
		wantStatus int
	}{
		{"newer manifest", models.ManifestEnvelope{Version: 8}, nil, http.StatusOK},
		{"not newer", models.ManifestEnvelope{}, store.ErrManifestNotNewer, http.StatusNoContent},
		{"no manifest", models.ManifestEnvelope{}, store.ErrManifestNotFound, http.StatusNotFound},
		{"database down", models.ManifestEnvelope{}, fmt.Errorf("%w: conn refused", store.ErrTransient), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.storage.EXPECT().
				GetManifestIfNewer(gomock.Any(), "acc-1", uint64(7)).
				Return(tt.manifest, tt.err)

			rec := ts.do(t, http.MethodGet, "/v1/storage/manifest/version/7", nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Empty(t, rec.Body.Bytes())
			}
		})
	}
}

func TestGetManifestIfNewer_InvalidVersion(t *testing.T) {
	ts := newTestServer(t)

	for _, v := range []string{"abc", "-1"} {
		rec := ts.do(t, http.MethodGet, "/v1/storage/manifest/version/"+v, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, v)
	}
}

// ── write ────────────────────────────────────────────────────────────────────

func TestWriteStorage(t *testing.T) {
	op := models.WriteOperation{
		Manifest:    models.ManifestEnvelope{Version: 2, Value: []byte("m")},
		InsertItems: []models.ItemEnvelope{{Key: []byte{1}, Value: []byte("a")}},
		DeleteKeys:  [][]byte{{9}},
	}

	t.Run("accepted", func(t *testing.T) {
		ts := newTestServer(t)
		ts.storage.EXPECT().Write(gomock.Any(), "acc-1", op).Return(models.ManifestEnvelope{}, nil)

		rec := ts.do(t, http.MethodPut, "/v1/storage", op)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("snappy body", func(t *testing.T) {
		ts := newTestServer(t)
		ts.storage.EXPECT().Write(gomock.Any(), "acc-1", op).Return(models.ManifestEnvelope{}, nil)

		raw, err := json.Marshal(op)
		require.NoError(t, err)
		rec := ts.do(t, http.MethodPut, "/v1/storage", snappy.Encode(nil, raw), "Content-Encoding", "snappy")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("version conflict returns current manifest", func(t *testing.T) {
		ts := newTestServer(t)
		current := models.ManifestEnvelope{Version: 5, Value: []byte("theirs")}
		ts.storage.EXPECT().Write(gomock.Any(), "acc-1", op).Return(current, store.ErrVersionConflict)

		rec := ts.do(t, http.MethodPut, "/v1/storage", op)

		require.Equal(t, http.StatusConflict, rec.Code)
		var got models.ManifestEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, current, got)
	})

	t.Run("invalid operation", func(t *testing.T) {
		ts := newTestServer(t)
		ts.storage.EXPECT().
			Write(gomock.Any(), "acc-1", gomock.Any()).
			Return(models.ManifestEnvelope{}, fmt.Errorf("%w: version 0", service.ErrInvalidDataProvided))

		rec := ts.do(t, http.MethodPut, "/v1/storage", models.WriteOperation{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do(t, http.MethodPut, "/v1/storage", []byte("{not json"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// ── read ─────────────────────────────────────────────────────────────────────

func TestReadStorage(t *testing.T) {
	op := models.ReadOperation{ReadKeys: [][]byte{{1}, {2}}}
	response := models.ReadResponse{Items: []models.ItemEnvelope{{Key: []byte{1}, Value: []byte("a")}}}

	t.Run("plain response", func(t *testing.T) {
		ts := newTestServer(t)
		ts.storage.EXPECT().Read(gomock.Any(), "acc-1", op).Return(response, nil)

		rec := ts.do(t, http.MethodPut, "/v1/storage/read", op)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		var got models.ReadResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, response, got)
	})

	t.Run("snappy response", func(t *testing.T) {
		ts := newTestServer(t)
		ts.storage.EXPECT().Read(gomock.Any(), "acc-1", op).Return(response, nil)

		rec := ts.do(t, http.MethodPut, "/v1/storage/read", op, "Accept-Encoding", "snappy")

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "snappy", rec.Header().Get("Content-Encoding"))
		decoded, err := snappy.Decode(nil, rec.Body.Bytes())
		require.NoError(t, err)
		var got models.ReadResponse
		require.NoError(t, json.Unmarshal(decoded, &got))
		assert.Equal(t, response, got)
	})

	t.Run("store failure", func(t *testing.T) {
		ts := newTestServer(t)
		ts.storage.EXPECT().Read(gomock.Any(), "acc-1", op).Return(models.ReadResponse{}, store.ErrExecutingQuery)

		rec := ts.do(t, http.MethodPut, "/v1/storage/read", op)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
