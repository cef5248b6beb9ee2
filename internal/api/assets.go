// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sapcc/go-bits/httpapi"
)

var contentTypeForExtension = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
}

// GetStaticAsset serves the dashboard's web assets. Anything that is not a
// plain file directly inside the asset directory is a 404.
func (p *v1Provider) GetStaticAsset(w http.ResponseWriter, r *http.Request) {
	httpapi.IdentifyEndpoint(r, "/<static-asset>")
	httpapi.SkipRequestLog(r)

	name := path.Clean(strings.TrimPrefix(r.URL.Path, "/"))
	if name == "." || name == "/" {
		name = "index.html"
	}
	// no subdirectories, no traversal
	if strings.Contains(name, "/") || strings.HasPrefix(name, ".") {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	contentType, ok := contentTypeForExtension[filepath.Ext(name)]
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	buf, err := os.ReadFile(filepath.Join(p.WebAssetDir, name))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(buf) //nolint:errcheck
	}
}
