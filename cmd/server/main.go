package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	httphandler "github.com/stefancruz/grayjay-plugin-librivox/internal/adapter/http"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/config"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/librivox"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/service"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/state"
)

func main() {
	cfg := config.Load()
	slog.SetLogLoggerLevel(cfg.SlogLevel())

	st := state.LoadFile(cfg.StatePath)
	books, readers, authors, latest := st.Stats()
	log.Printf("Loaded state: %d books, %d readers, %d authors, %d latest releases",
		books, readers, authors, latest)

	client := librivox.NewClient(cfg)
	svc := service.New(cfg, client, st)
	handler := httphandler.NewHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/home", handler.Home)
	mux.HandleFunc("/api/search", handler.Search)
	mux.HandleFunc("/api/authors/search", handler.SearchAuthors)
	mux.HandleFunc("/api/book", handler.Book)
	mux.HandleFunc("/api/chapter", handler.Chapter)
	mux.HandleFunc("/api/channel", handler.Channel)
	mux.HandleFunc("/api/channel/contents", handler.ChannelContents)
	mux.HandleFunc("/api/classify", handler.Classify)
	mux.HandleFunc("/api/state", handler.State)

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httphandler.Logging(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if err := st.SaveFile(); err != nil {
		slog.Error("final state save failed", "error", err)
	}

	log.Println("Server exiting")
}
