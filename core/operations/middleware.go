/*
Copyright IBM Corp All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operations

import (
	"net/http"
)

// requireCert rejects requests that did not present a verified client
// certificate.
func requireCert(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.TLS == nil:
			fallthrough
		case len(r.TLS.VerifiedChains) == 0:
			fallthrough
		case len(r.TLS.VerifiedChains[0]) == 0:
			w.WriteHeader(http.StatusUnauthorized)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// recoveryLogger adapts Logger to the gorilla recovery handler.
type recoveryLogger struct {
	logger Logger
}

func (r recoveryLogger) Println(args ...interface{}) {
	r.logger.Errorf("recovered from panic in operations handler: %v", args)
}
