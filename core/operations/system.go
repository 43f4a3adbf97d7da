/*
Copyright IBM Corp All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operations

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/depress-xyz/depress/common/flogging"
	"github.com/depress-xyz/depress/common/flogging/httpadmin"
	"github.com/depress-xyz/depress/common/metadata"
	"github.com/depress-xyz/depress/common/metrics"
	"github.com/depress-xyz/depress/common/metrics/disabled"
	"github.com/depress-xyz/depress/common/metrics/prometheus"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/hyperledger/fabric-lib-go/healthz"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:generate counterfeiter -o fakes/logger.go -fake-name Logger . Logger

type Logger interface {
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

type MetricsOptions struct {
	Provider string
}

type Options struct {
	Logger        Logger
	ListenAddress string
	TLS           TLS
	Metrics       MetricsOptions
	Version       string
	ProgramID     string
}

// System is the operations endpoint of a depress process. It serves health,
// metrics, version and log level administration over HTTP and implements
// ifrit.Runner.
type System struct {
	metrics.Provider

	logger        Logger
	options       Options
	router        *mux.Router
	httpServer    *http.Server
	listener      net.Listener
	healthHandler *healthz.HealthHandler
	registry      *prom.Registry
	versionGauge  metrics.Gauge
}

func NewSystem(o Options) *System {
	logger := o.Logger
	if logger == nil {
		logger = flogging.MustGetLogger("operations.runner")
	}
	if o.Version == "" {
		o.Version = metadata.Version
	}

	router := mux.NewRouter()
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger: logger}),
		handlers.PrintRecoveryStack(false),
	)
	system := &System{
		logger:  logger,
		options: o,
		router:  router,
		httpServer: &http.Server{
			Handler:           recovery(router),
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      2 * time.Minute,
		},
	}

	system.initializeHealthCheckHandler()
	system.initializeLoggingHandler()
	system.initializeMetricsProvider()
	system.initializeVersionInfoHandler()

	return system
}

func (s *System) Run(signals <-chan os.Signal, ready chan<- struct{}) error {
	err := s.Start()
	if err != nil {
		return err
	}

	close(ready)
	<-signals
	return s.Stop()
}

func (s *System) Start() error {
	err := s.listen()
	if err != nil {
		return err
	}

	s.versionGauge.With("version", s.options.Version).Set(1)

	go s.httpServer.Serve(s.listener)
	s.logger.Infof("operations endpoint listening on %s", s.listener.Addr())

	return nil
}

func (s *System) Stop() error {
	if s.listener == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the address the endpoint is listening on. It is only valid
// after Start returns successfully.
func (s *System) Addr() string {
	return s.listener.Addr().String()
}

// Log satisfies the go-kit log.Logger interface.
func (s *System) Log(keyvals ...interface{}) error {
	s.logger.Warn(keyvals...)
	return nil
}

func (s *System) RegisterChecker(component string, checker healthz.HealthChecker) error {
	return s.healthHandler.RegisterChecker(component, checker)
}

// RegisterHandler routes path to handler. When secure is set and TLS is
// enabled, clients must present a verified certificate.
func (s *System) RegisterHandler(path string, handler http.Handler, secure bool) {
	if secure && s.options.TLS.Enabled {
		handler = requireCert(handler)
	}
	s.router.Handle(path, handler)
}

func (s *System) listen() error {
	listener, err := net.Listen("tcp", s.options.ListenAddress)
	if err != nil {
		return err
	}
	tlsConfig, err := s.options.TLS.Config()
	if err != nil {
		listener.Close()
		return err
	}
	if tlsConfig != nil {
		listener = tls.NewListener(listener, tlsConfig)
	}
	s.listener = listener
	return nil
}

func (s *System) initializeMetricsProvider() {
	providerType := s.options.Metrics.Provider
	switch providerType {
	case "prometheus":
		s.registry = prom.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		s.Provider = &prometheus.Provider{Registerer: s.registry}
		s.versionGauge = versionGauge(s.Provider)
		s.RegisterHandler("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}), s.options.TLS.Enabled)

	default:
		if providerType != "disabled" && providerType != "" {
			s.logger.Warnf("Unknown provider type: %s; metrics disabled", providerType)
		}

		s.Provider = &disabled.Provider{}
		s.versionGauge = versionGauge(s.Provider)
	}
}

func (s *System) initializeLoggingHandler() {
	s.RegisterHandler("/logspec", httpadmin.NewSpecHandler(), s.options.TLS.Enabled)
}

func (s *System) initializeHealthCheckHandler() {
	s.healthHandler = healthz.NewHealthHandler()
	s.RegisterHandler("/healthz", s.healthHandler, false)
}

func (s *System) initializeVersionInfoHandler() {
	versionInfo := &VersionInfoHandler{
		Logger:    s.logger,
		CommitSHA: metadata.CommitSHA,
		Version:   s.options.Version,
		ProgramID: s.options.ProgramID,
	}
	s.RegisterHandler("/version", versionInfo, false)
}
