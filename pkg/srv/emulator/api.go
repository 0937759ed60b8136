/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package emulator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/greenlab/go-novaxr/pkg/config"
	"github.com/greenlab/go-novaxr/pkg/log"
)

const (
	shutdownTimeout = 5 * time.Second
)

// ApiServer exposes the emulator status. It never changes the session.
type ApiServer struct {
	*config.Config
	*mux.Router
	emu *Emulator
}

func NewApiServer(cfg *config.Config, emu *Emulator) *ApiServer {
	log.Info("Initializing API server with address: %s", cfg.ApiEndpoint())
	s := &ApiServer{
		Config: cfg,
		emu:    emu,
	}
	s.configureRouter()
	return s
}

// Run serves HTTP until ctx is cancelled
func (s *ApiServer) Run(ctx context.Context) error {
	log.Info("Starting API server: %s", s.ApiEndpoint())
	httpServer := &http.Server{
		Handler: s.Handler(),
		Addr:    s.ApiEndpoint(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Handler returns the router wrapped with logging and panic recovery
func (s *ApiServer) Handler() http.Handler {
	logged := handlers.CustomLoggingHandler(io.Discard, s.Router, func(_ io.Writer, p handlers.LogFormatterParams) {
		log.Debug("API %s %s %d", p.Request.Method, p.URL.Path, p.StatusCode)
	})
	return handlers.RecoveryHandler()(logged)
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix("/api").Subrouter()
	subRouter.HandleFunc("/status", s.handleStatus()).Methods("GET")
	s.Router.Handle("/metrics", promhttp.HandlerFor(s.emu.Metrics().Registry, promhttp.HandlerOpts{})).Methods("GET")
}

func (s *ApiServer) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s.emu.Status())
	}
}
