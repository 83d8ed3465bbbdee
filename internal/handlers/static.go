package handlers

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// spaHandler отдаёт сборку фронтенда; неизвестные пути получают index.html.
func spaHandler(dir string) http.HandlerFunc {
	files := http.FileServer(http.Dir(dir))
	return func(w http.ResponseWriter, r *http.Request) {
		if (r.Method != http.MethodGet && r.Method != http.MethodHead) || strings.HasPrefix(r.URL.Path, "/api/") {
			writeMessage(w, http.StatusNotFound, "Route not found")
			return
		}

		path := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			files.ServeHTTP(w, r)
			return
		}

		// ServeFile отвергает пути с "..", поэтому index отдаётся напрямую
		f, err := os.Open(filepath.Join(dir, "index.html"))
		if err != nil {
			writeMessage(w, http.StatusNotFound, "Route not found")
			return
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil || info.IsDir() {
			writeMessage(w, http.StatusNotFound, "Route not found")
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeContent(w, r, "index.html", info.ModTime(), f)
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

func healthHandler(ping func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
