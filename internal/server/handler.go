package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const reloadScript = `<script>
(function () {
  var source = new EventSource("/__reload");
  source.onmessage = function () { location.reload(); };
})();
</script>`

// siteHandler serves the generated output directory, injecting the live
// reload script into every HTML response.
func (s *Server) siteHandler() http.Handler {
	fileServer := http.FileServer(http.Dir(s.cfg.OutputDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.wantsHTML(r.URL.Path) {
			fileServer.ServeHTTP(w, r)
			return
		}
		page, ok := s.readPage(r.URL.Path)
		if !ok {
			fileServer.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(injectReloadScript(page))
	})
}

// wantsHTML reports whether the request path maps to an HTML page rather
// than a static asset.
func (s *Server) wantsHTML(urlPath string) bool {
	ext := filepath.Ext(urlPath)
	return ext == "" || ext == ".html"
}

// readPage resolves a URL path to a page on disk, following the
// directory index convention the generator writes.
func (s *Server) readPage(urlPath string) ([]byte, bool) {
	clean := filepath.Clean("/" + urlPath)
	candidates := []string{}
	if strings.HasSuffix(urlPath, ".html") {
		candidates = append(candidates, filepath.Join(s.cfg.OutputDir, clean))
	} else {
		candidates = append(candidates,
			filepath.Join(s.cfg.OutputDir, clean, "index.html"),
			filepath.Join(s.cfg.OutputDir, clean+".html"),
		)
	}
	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err == nil {
			return data, true
		}
	}
	return nil, false
}

// injectReloadScript places the SSE reload snippet before </body>, or
// appends it when the page has no closing body tag.
func injectReloadScript(page []byte) []byte {
	html := string(page)
	if idx := strings.LastIndex(html, "</body>"); idx >= 0 {
		return []byte(html[:idx] + reloadScript + "\n" + html[idx:])
	}
	return append(page, []byte("\n"+reloadScript)...)
}
