// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-storage-sync/internal/service"
	"github.com/MKhiriev/go-storage-sync/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrNoAccountProvided:       http.StatusUnauthorized,
	service.ErrNoDeviceProvided:        http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,

	store.ErrManifestNotFound: http.StatusNotFound,
	store.ErrVersionConflict:  http.StatusConflict,
	store.ErrTransient:        http.StatusServiceUnavailable,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
	store.ErrDecodingEntity:       http.StatusInternalServerError,
}

// statusFromError maps a service or store error onto an HTTP status code.
// ErrTransient is checked before the generic SQL errors it may wrap.
func statusFromError(err error) int {
	if errors.Is(err, store.ErrTransient) {
		return http.StatusServiceUnavailable
	}
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
