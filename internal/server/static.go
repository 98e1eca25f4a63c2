package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// staticFiles serves the front-end assets from root. Any path segment
// starting with a dot is hidden, which keeps .env and VCS metadata private.
// Lookups go through os.Root, so symlinks cannot lead outside root.
type staticFiles struct {
	root string
}

// serve writes the file for r and reports whether one was found.
func (sf staticFiles) serve(w http.ResponseWriter, r *http.Request) bool {
	if sf.root == "" {
		return false
	}

	upath := path.Clean("/" + r.URL.Path)
	for _, seg := range strings.Split(upath, "/") {
		if strings.HasPrefix(seg, ".") {
			return false
		}
	}

	root, err := os.OpenRoot(sf.root)
	if err != nil {
		return false
	}
	defer root.Close()

	name := "."
	if upath != "/" {
		name = filepath.FromSlash(strings.TrimPrefix(upath, "/"))
	}

	fi, err := root.Stat(name)
	if err != nil {
		return false
	}
	if fi.IsDir() {
		name = filepath.Join(name, "index.html")
		if fi, err = root.Stat(name); err != nil || fi.IsDir() {
			return false
		}
	}

	f, err := root.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
	return true
}
