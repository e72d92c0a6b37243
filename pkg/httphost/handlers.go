package httphost

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	rerrors "github.com/vango-dev/localeroute/internal/errors"
	"github.com/vango-dev/localeroute/pkg/routetree"
	"github.com/vango-dev/localeroute/pkg/router"
)

// RouteInfo is one entry of the /api/routes listing.
type RouteInfo struct {
	Key   string `json:"key"`
	Path  string `json:"path"`
	View  string `json:"view"`
	Auth  bool   `json:"auth,omitempty"`
	Depth int    `json:"depth"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleTranslate serves /api/translate?uri=&from=&to=. Every other query
// parameter is substituted into the translated path.
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	rt := s.Router()
	q := r.URL.Query()

	uri := q.Get("uri")
	from := q.Get("from")
	to := q.Get("to")
	if uri == "" || to == "" {
		writeJSONError(w, http.StatusBadRequest, "uri and to are required")
		return
	}
	if from == "" {
		from = rt.Config().DefaultLang
	}
	if !rt.Supports(from) || !rt.Supports(to) {
		writeJSONError(w, http.StatusBadRequest, "unsupported language")
		return
	}

	extra := make(map[string]string)
	for k, v := range q {
		switch k {
		case "uri", "from", "to":
			continue
		}
		if len(v) > 0 {
			extra[k] = v[0]
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"path": rt.Translate(uri, from, to, extra),
	})
}

// handleRoutes lists the route tree for one language, depth first.
func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	rt := s.Router()
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = rt.Config().DefaultLang
	}
	if !rt.Supports(lang) {
		writeJSONError(w, http.StatusBadRequest, "unsupported language")
		return
	}
	writeJSON(w, http.StatusOK, ListRoutes(rt.Tree(), lang))
}

// ListRoutes flattens tree into full paths for lang. Routes without a
// template for lang are listed with an empty path.
func ListRoutes(tree *routetree.Tree, lang string) []RouteInfo {
	out := []RouteInfo{}
	var stack []string
	_ = tree.Walk(func(fullPath string, n *routetree.Node, depth int) error {
		stack = stack[:depth]
		tmpl, ok := n.Path(lang)
		seg := ""
		if ok {
			seg = tmpl.String()
		}
		stack = append(stack, seg)

		path := ""
		if ok {
			var parts []string
			for _, p := range stack {
				if p != "" {
					parts = append(parts, p)
				}
			}
			path = "/" + lang + "/" + strings.Join(parts, "/")
		}
		out = append(out, RouteInfo{
			Key:   fullPath,
			Path:  path,
			View:  n.View,
			Auth:  n.Auth,
			Depth: depth,
		})
		return nil
	})
	return out
}

// handlePage resolves the request path and writes the outcome: a redirect,
// the error panel or the rendered view.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	rt := s.Router()

	canon, err := router.CanonicalizePath(r.URL.EscapedPath())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc := &document{}
	if rt.GetViews(doc) == nil {
		s.writePanel(w, doc)
		return
	}

	nav := &requestNav{path: canon.Path}
	view := rt.ResolveCurrentView(r.Context(), nav, doc)

	if nav.redirect != "" {
		target, err := router.ValidateRedirect(nav.redirect)
		if err != nil {
			s.logger.Error("rejected redirect target", "target", nav.redirect, "error", err)
			http.Error(w, "invalid redirect", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, router.RedirectURL(target, router.WithQuery(r.URL.RawQuery)), http.StatusFound)
		return
	}
	if doc.hasError() {
		s.writePanel(w, doc)
		return
	}
	if view.Null {
		http.Error(w, "view could not be loaded", http.StatusInternalServerError)
		return
	}
	if view.Auth && !s.authorized(r) {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	_, rest, _ := router.SplitLang(canon.Path)
	uri := strings.Trim(rest, "/")
	route := rt.FindRoute(uri, doc.lang)

	data := PageData{
		Lang:       doc.lang,
		Route:      route.FullPath,
		Props:      view.Props,
		Params:     view.Params,
		Alternates: rt.Alternates(uri, doc.lang),
	}

	var buf bytes.Buffer
	if err := renderPage(&buf, view, data); err != nil {
		s.logger.Error("render failed", "path", canon.Path, "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if uri == router.NotFoundSegment {
		status = http.StatusNotFound
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Language", doc.lang)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) writePanel(w http.ResponseWriter, doc *document) {
	title := doc.errTitle
	if title == "" {
		title = rerrors.DefaultPanelTitle
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	if err := rerrors.RenderPanel(w, title, doc.errMsg); err != nil {
		s.logger.Error("render error panel", "error", err)
	}
}
