package rest

import (
	"fmt"
	"net/http"
	"time"
)

// Start serves the liveness ping and the read-only saves endpoints.
func Start(port string, savesHandler *SavesHandler) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", pingHandler)
	savesHandler.Register(mux)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func pingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}
