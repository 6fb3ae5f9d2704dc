// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package middleware

import (
	"encoding/json"
	"log"
	"net/http"
	"runtime/debug"
	"time"
)

// Recovery turns a handler panic into a 500 INTERNAL_ERROR envelope. When the
// handler already started its response, or hijacked the connection, the
// panic is only logged.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			id := RequestID(r.Context())
			log.Printf("API: panic in %s %s [%s]: %v\n%s", r.Method, r.URL.Path, id, v, debug.Stack())

			if rec, ok := w.(*recorder); ok && (rec.written() || rec.hijacked) {
				return
			}
			meta := map[string]interface{}{"timestamp": time.Now().UTC()}
			if id != "" {
				meta["request_id"] = id
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{"code": "INTERNAL_ERROR", "message": "internal server error"},
				"meta":  meta,
			})
		}()

		next.ServeHTTP(w, r)
	})
}
