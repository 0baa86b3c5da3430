//go:build dev

package resources

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
)

// staticDir resolves the static directory next to this source file, so the
// dev server finds the assets no matter what the working directory is.
func staticDir() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return StaticDirectoryPath
	}
	return filepath.Join(filepath.Dir(filename), "static")
}

// Handler serves static files straight from disk. Stylesheet edits show up
// on the next reload without rebuilding.
func Handler() http.Handler {
	dir := staticDir()
	slog.Info("serving static assets from disk", "path", dir)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Last-Modified validation only; these files change while developing.
		http.StripPrefix("/static/", http.FileServer(http.FS(os.DirFS(dir)))).ServeHTTP(w, r)
	})
}

// StaticPath returns the URL path for a static asset.
func StaticPath(path string) string {
	return "/static/" + path
}
