package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// spaHandler serves files from dir. Paths that do not name a file get
// index.html so the client-side router can take over.
func spaHandler(dir string) http.HandlerFunc {
	index := filepath.Join(dir, "index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.NotFound(w, r)
			return
		}

		// path.Clean on a rooted path cannot climb above dir.
		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			http.ServeFile(w, r, name)
			return
		}

		http.ServeFile(w, r, index)
	}
}
