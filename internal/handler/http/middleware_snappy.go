// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/golang/snappy"

	"github.com/MKhiriev/go-storage-sync/internal/app"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
)

const encodingSnappy = "snappy"

var snappyBufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// withSnappy decodes request bodies sent with "Content-Encoding: snappy" and
// compresses responses for clients that list snappy in Accept-Encoding.
// Both directions use the snappy block format, so the response is buffered
// until the handler returns.
func withSnappy(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Encoding"), encodingSnappy) && r.Body != nil {
			compressed, err := io.ReadAll(r.Body)
			_ = r.Body.Close()
			if err != nil {
				http.Error(w, app.MsgBodyUnreadable, http.StatusBadRequest)
				return
			}
			decoded, err := snappy.Decode(nil, compressed)
			if err != nil {
				logger.FromRequest(r).Err(err).Msg("invalid snappy body")
				http.Error(w, app.MsgInvalidSnappyData, http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(decoded))
			r.ContentLength = int64(len(decoded))
			r.Header.Del("Content-Encoding")
		}

		if !strings.Contains(r.Header.Get("Accept-Encoding"), encodingSnappy) {
			next.ServeHTTP(w, r)
			return
		}

		buf := snappyBufferPool.Get().(*bytes.Buffer)
		buf.Reset()
		defer snappyBufferPool.Put(buf)

		sw := &snappyResponseWriter{ResponseWriter: w, buf: buf, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		sw.flush()
	})
}

type snappyResponseWriter struct {
	http.ResponseWriter
	buf    *bytes.Buffer
	status int
}

func (w *snappyResponseWriter) WriteHeader(statusCode int) {
	w.status = statusCode
}

func (w *snappyResponseWriter) Write(data []byte) (int, error) {
	return w.buf.Write(data)
}

func (w *snappyResponseWriter) flush() {
	if w.buf.Len() == 0 {
		w.ResponseWriter.WriteHeader(w.status)
		return
	}

	encoded := snappy.Encode(nil, w.buf.Bytes())
	w.Header().Set("Content-Encoding", encodingSnappy)
	w.Header().Set("Content-Length", strconv.Itoa(len(encoded)))
	w.ResponseWriter.WriteHeader(w.status)
	_, _ = w.ResponseWriter.Write(encoded)
}
