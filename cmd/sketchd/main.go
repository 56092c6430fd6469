// Command sketchd serves digit recognition over HTTP and WebSocket.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogpu/sketch"
	"github.com/gogpu/sketch/internal/server"
	"github.com/gogpu/sketch/internal/zlog"
)

func main() {
	var (
		addr    = flag.String("addr", ":"+envOr("PORT", "8080"), "listen address")
		level   = flag.String("log", os.Getenv("SKETCH_LOG_LEVEL"), "log level (debug, info, warn, error)")
		console = flag.Bool("console", false, "human-readable logs")
		frame   = flag.Duration("frame", sketch.DefaultFrame, "live session frame interval")
		upload  = flag.Int64("max-upload", server.DefaultMaxUpload, "maximum image upload or live frame in bytes")
		pixels  = flag.Int("max-pixels", server.DefaultMaxPixels, "maximum decoded image area in pixels")
	)
	flag.Parse()

	lvl, err := zlog.ParseLevel(*level)
	if err != nil {
		log.Fatalf("sketchd: %v", err)
	}
	logger := zlog.New(os.Stderr, lvl)
	if *console {
		logger = zlog.NewConsole(lvl)
	}
	sketch.SetLogger(logger)

	start := time.Now()
	p, err := sketch.New()
	if err != nil {
		logger.Error("sketchd: pipeline", "err", err)
		os.Exit(1)
	}
	logger.Info("sketchd: prototypes ready", "count", p.Bank().Len(), "elapsed", time.Since(start))

	srv := server.New(p,
		server.WithLogger(logger),
		server.WithFrame(*frame),
		server.WithMaxUpload(*upload),
		server.WithMaxPixels(*pixels))

	hs := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- hs.ListenAndServe()
	}()

	fmt.Printf("sketchd listening on %s\n", *addr)
	fmt.Println("  GET  /health")
	fmt.Println("  POST /predict        {\"image\": [784 floats]}")
	fmt.Println("  POST /predict/image  multipart field \"image\"")
	fmt.Println("  GET  /ws             binary PNG frames")

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("sketchd: serve", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("sketchd: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			logger.Error("sketchd: shutdown", "err", err)
		}
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
