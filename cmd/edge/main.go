// Command edge runs the personalization proxy in front of the page server.
package main

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cms-site/pkg/config"
	"cms-site/pkg/logging"
	"cms-site/pkg/personalize"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	config.Init()
	logging.SetupLogger(config.LogLevel, config.Production)

	origin, err := url.Parse(config.OriginURL)
	if err != nil || origin.Host == "" {
		log.Fatal().Str("origin", config.OriginURL).Msg("ORIGIN_URL must be an absolute URL")
	}

	logger := logging.GetLogger("edge")
	proxy := httputil.NewSingleHostReverseProxy(origin)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("Origin unreachable")
		w.WriteHeader(http.StatusBadGateway)
	}

	var handler http.Handler = proxy
	if config.PersonalizeProjectUID != "" {
		collector := &personalize.Collector{
			Backend:      personalize.NewEdgeClient(config.PersonalizeEdgeAPIURL, config.PersonalizeTimeout),
			ProjectUID:   config.PersonalizeProjectUID,
			Site:         config.Site,
			Timeout:      config.PersonalizeTimeout,
			DebugHeaders: config.PersonalizeDebug,
			Logger:       logging.GetLogger("personalize"),
		}
		handler = collector.Middleware(proxy)
	} else {
		logger.Warn().Msg("PERSONALIZE_PROJECT_UID not set, proxying without personalization")
	}

	srv := &http.Server{Addr: config.EdgeListenAddr, Handler: handler}
	go func() {
		logger.Info().Str("addr", config.EdgeListenAddr).Str("origin", origin.String()).Msg("Edge proxy listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	if err := shutdown(srv, 10*time.Second, logger); err != nil {
		os.Exit(1)
	}
}

func shutdown(srv *http.Server, timeout time.Duration, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Shutdown failed")
		return err
	}
	logger.Info().Msg("Edge proxy exited")
	return nil
}
