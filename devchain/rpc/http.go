// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rpc

import (
	"net/http"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/ali-staking/stakedeploy/devchain"
	"github.com/ali-staking/stakedeploy/metrics"
)

var metricHTTPRequests = metrics.LazyLoadCounterVec("rpc_http_requests_count", []string{"code"})

// HTTPOptions configures the http endpoint of the dev chain.
type HTTPOptions struct {
	// Origins allowed for cross origin requests.
	Origins       []string
	EnableMetrics bool
}

// NewHTTPHandler serves json-rpc over chain at the root path, and prometheus metrics at
// /metrics when enabled. The returned func stops the json-rpc server.
func NewHTTPHandler(chain *devchain.Chain, opts HTTPOptions) (http.Handler, func(), error) {
	server, err := NewServer(chain)
	if err != nil {
		return nil, nil, err
	}

	router := mux.NewRouter()
	if opts.EnableMetrics {
		router.Path("/metrics").Methods(http.MethodGet).Handler(metrics.HTTPHandler())
		router.Use(metricsMiddleware)
	}
	router.Path("/").Handler(server)

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(opts.Origins),
		handlers.AllowedMethods([]string{http.MethodPost, http.MethodGet, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)
	return handler, server.Stop, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metricHTTPRequests().AddWithLabel(1, map[string]string{"code": strconv.Itoa(rec.status)})
	})
}
