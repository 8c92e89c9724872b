// The ledmatrixd command runs the HUB75 LED matrix controller: the render
// and refresh loops that drive the panel, and the HTTP control plane that
// manages the playlist, brightness, and preview lease.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/config"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/display"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/events"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/panel"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/playlist"
	playlisthttp "github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/playlist/http"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/preview"
	previewhttp "github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/preview/http"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/ratelimit"
	ratelimitredis "github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/ratelimit/redis"
)

var configPath string

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledmatrixd",
		Short: "HUB75 LED matrix controller daemon",
		RunE:  runDaemon,
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file (yaml)")
	cmd.Flags().Int("rows", 0, "panel rows per module (overrides config/env)")
	cmd.Flags().Int("cols", 0, "panel columns per module")
	cmd.Flags().Int("chain-length", 0, "number of daisy-chained panels")
	cmd.Flags().Int("parallel", 0, "number of parallel chains")
	cmd.Flags().String("driver", "", "panel driver: native or binding")
	cmd.Flags().String("hardware-mapping", "", "GPIO hardware mapping name")
	cmd.Flags().Int("gpio-slowdown", -1, "GPIO slowdown factor")
	cmd.Flags().Int("pwm-bits", 0, "PWM bit depth, 1-11")
	cmd.Flags().Int("pwm-lsb-nanoseconds", 0, "PWM LSB duration in nanoseconds")
	cmd.Flags().Int("dither-bits", -1, "temporal dithering bits, 0-2")
	cmd.Flags().String("row-address-scheme", "", "row addressing scheme")
	cmd.Flags().String("led-sequence", "", "LED color channel order, e.g. RGB")
	cmd.Flags().String("multiplex-scheme", "", "row multiplexing scheme")
	cmd.Flags().String("pixel-mapper-chain", "", "pixel mapper chain spec")
	cmd.Flags().Int("refresh-rate-cap", -1, "refresh rate cap in Hz, 0 for uncapped")
	cmd.Flags().Int("max-brightness", -1, "maximum brightness cap, 0-100")
	cmd.Flags().Bool("interlaced", false, "enable interlaced scan")
	cmd.Flags().Bool("inverse-colors", false, "invert panel colors")
	cmd.Flags().Bool("no-hardware-pulse", false, "disable the hardware pulse generator")
	cmd.Flags().Bool("show-refresh", false, "log refresh rate periodically")
	cmd.Flags().Int("web-port", 0, "HTTP control plane port")
	cmd.Flags().String("bind-address", "", "HTTP bind address")
	cmd.Flags().String("state-file-path", "", "playlist/brightness state file path")
	cmd.Flags().String("redis-address", "", "Redis address for rate limiting, empty disables it")

	return cmd
}

func runDaemon(cmd *cobra.Command, args []string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlagOverrides(cmd, cfg)

	bus := events.NewBus(logger)

	persister := playlist.NewJSONFilePersister(cfg.Web.StateFilePath)
	store, err := playlist.New(persister, bus, uint8(cfg.Panel.MaxBrightness), logger)
	if err != nil {
		return fmt.Errorf("loading playlist state: %w", err)
	}

	previewMgr := preview.New(bus, logger)

	driver, err := panel.New(cfg.Panel, logger)
	if err != nil {
		return fmt.Errorf("opening panel driver: %w", err)
	}
	defer driver.Close()

	engine := display.NewEngine(store, previewMgr, driver, cfg.Panel.InverseColors, logger)
	engine.EnsureStarted()

	limiterService := buildRateLimiter(cfg.Web.RedisAddress, logger)
	limiterService.RegisterLimit("api_write", ratelimit.Limit{Rate: 60, Period: time.Minute})

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(accessLog(logger))

	playlistHandler := playlisthttp.NewHandler(store, bus, logger)
	previewHandler := previewhttp.NewHandler(previewMgr, bus, logger)

	router.Use(mutationRateLimit(limiterService, logger))
	playlistHandler.RegisterRoutes(router)
	previewHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Web.BindAddress, cfg.Web.Port),
		Handler:      router,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: 0, // SSE streams hold the connection open indefinitely
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go previewMgr.StartSweeper(ctx)
	go engine.Run(ctx)

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("starting HTTP control plane")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var panelErr error
	select {
	case <-shutdown:
		logger.Info().Msg("shutting down")
	case panelErr = <-driver.Fatal():
		logger.Error().Err(panelErr).Msg("panel driver failed, shutting down")
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if panelErr != nil {
		return fmt.Errorf("panel driver failed: %w", panelErr)
	}
	return nil
}

// buildRateLimiter returns a Redis-backed limiter when redisAddress is set,
// otherwise a no-op limiter so the controller runs standalone.
func buildRateLimiter(redisAddress string, logger zerolog.Logger) ratelimit.Service {
	if redisAddress == "" {
		return ratelimit.NewService(nil, logger)
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddress})
	return ratelimit.NewService(ratelimitredis.NewStore(client), logger)
}

// mutationRateLimit throttles non-GET, non-SSE requests against the
// api_write bucket; playlist reads and event streams pass through freely.
func mutationRateLimit(service ratelimit.Service, logger zerolog.Logger) func(http.Handler) http.Handler {
	limited := ratelimit.Middleware(service, "api_write", logger)
	return func(next http.Handler) http.Handler {
		limitedNext := limited(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}
			limitedNext.ServeHTTP(w, r)
		})
	}
}

// accessLog logs each request's method, path, status and duration.
func accessLog(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("rows") {
		cfg.Panel.Rows, _ = flags.GetInt("rows")
	}
	if flags.Changed("cols") {
		cfg.Panel.Cols, _ = flags.GetInt("cols")
	}
	if flags.Changed("chain-length") {
		cfg.Panel.ChainLength, _ = flags.GetInt("chain-length")
	}
	if flags.Changed("parallel") {
		cfg.Panel.Parallel, _ = flags.GetInt("parallel")
	}
	if flags.Changed("driver") {
		cfg.Panel.Driver, _ = flags.GetString("driver")
	}
	if flags.Changed("hardware-mapping") {
		cfg.Panel.HardwareMapping, _ = flags.GetString("hardware-mapping")
	}
	if flags.Changed("gpio-slowdown") {
		cfg.Panel.GPIOSlowdown, _ = flags.GetInt("gpio-slowdown")
	}
	if flags.Changed("pwm-bits") {
		cfg.Panel.PWMBits, _ = flags.GetInt("pwm-bits")
	}
	if flags.Changed("pwm-lsb-nanoseconds") {
		cfg.Panel.PWMLSBNanoseconds, _ = flags.GetInt("pwm-lsb-nanoseconds")
	}
	if flags.Changed("dither-bits") {
		cfg.Panel.DitherBits, _ = flags.GetInt("dither-bits")
	}
	if flags.Changed("row-address-scheme") {
		cfg.Panel.RowAddressScheme, _ = flags.GetString("row-address-scheme")
	}
	if flags.Changed("led-sequence") {
		cfg.Panel.LEDSequence, _ = flags.GetString("led-sequence")
	}
	if flags.Changed("multiplex-scheme") {
		cfg.Panel.MultiplexScheme, _ = flags.GetString("multiplex-scheme")
	}
	if flags.Changed("pixel-mapper-chain") {
		cfg.Panel.PixelMapperChain, _ = flags.GetString("pixel-mapper-chain")
	}
	if flags.Changed("refresh-rate-cap") {
		cfg.Panel.RefreshRateCap, _ = flags.GetInt("refresh-rate-cap")
	}
	if flags.Changed("max-brightness") {
		cfg.Panel.MaxBrightness, _ = flags.GetInt("max-brightness")
	}
	if flags.Changed("interlaced") {
		cfg.Panel.Interlaced, _ = flags.GetBool("interlaced")
	}
	if flags.Changed("inverse-colors") {
		cfg.Panel.InverseColors, _ = flags.GetBool("inverse-colors")
	}
	if flags.Changed("no-hardware-pulse") {
		cfg.Panel.NoHardwarePulse, _ = flags.GetBool("no-hardware-pulse")
	}
	if flags.Changed("show-refresh") {
		cfg.Panel.ShowRefresh, _ = flags.GetBool("show-refresh")
	}
	if flags.Changed("web-port") {
		cfg.Web.Port, _ = flags.GetInt("web-port")
	}
	if flags.Changed("bind-address") {
		cfg.Web.BindAddress, _ = flags.GetString("bind-address")
	}
	if flags.Changed("state-file-path") {
		cfg.Web.StateFilePath, _ = flags.GetString("state-file-path")
	}
	if flags.Changed("redis-address") {
		cfg.Web.RedisAddress, _ = flags.GetString("redis-address")
	}
}
