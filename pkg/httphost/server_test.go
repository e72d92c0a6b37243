package httphost

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/localeroute/internal/logging"
	"github.com/vango-dev/localeroute/pkg/middleware"
	"github.com/vango-dev/localeroute/pkg/router"
	"github.com/vango-dev/localeroute/pkg/routetree"
	"github.com/vango-dev/localeroute/pkg/views"
)

const siteRoutes = `
routes:
  home:
    view: Home
    paths: {en: /home, fr: /accueil}
    props: {title: Welcome}
  blog:
    view: blog/Index
    paths: {en: /blog, fr: /blogue}
    children:
      post:
        view: blog/Post
        paths: {en: "{slug}", fr: "{slug}"}
  account:
    view: Account
    auth: true
    paths: {en: /account, fr: /compte}
  broken:
    view: Broken
    paths: {en: /broken, fr: /casse}
`

func siteViews() fstest.MapFS {
	return fstest.MapFS{
		"views/Home.html":       {Data: []byte(`<h1>{{index .Props "title"}}</h1>`)},
		"views/blog/Index.html": {Data: []byte(`<h1>Blog</h1>`)},
		"views/blog/Post.html":  {Data: []byte(`<article>Post {{.Params.slug}}</article>`)},
		"views/Account.html":    {Data: []byte(`<h1>Account</h1>`)},
		"views/Broken.html":     {Data: []byte(`{{.Unclosed`)},
		"views/errors/404.html": {Data: []byte(`<h1>Not found</h1>`)},
	}
}

func newTestRouter(t *testing.T, files fstest.MapFS) *Router {
	t.Helper()

	tree, err := routetree.Parse([]byte(siteRoutes))
	require.NoError(t, err)

	reg, err := views.FSRegistry[Page](files, "views", "html", DecodeTemplate)
	require.NoError(t, err)

	rt, err := router.New(router.Config[Page]{
		SupportedLangs: []string{"en", "fr"},
		Routes:         tree,
		Views:          reg,
	}, router.WithLogger(logging.Discard()))
	require.NoError(t, err)
	return rt
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	return New(newTestRouter(t, siteViews()), opts...)
}

func get(t *testing.T, h http.Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestServer(t).Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestPageRendered(t *testing.T) {
	rec := get(t, newTestServer(t).Handler(), "/fr/blogue/bonjour")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `<html lang="fr">`)
	assert.Contains(t, body, "<article>Post bonjour</article>")
	assert.Contains(t, body, `hreflang="en" href="/en/blog/bonjour"`)
	assert.Contains(t, body, `hreflang="fr" href="/fr/blogue/bonjour"`)
	assert.Contains(t, body, "bonjour")
	assert.Equal(t, "fr", rec.Header().Get("Content-Language"))
}

func TestPageTitleFromProps(t *testing.T) {
	rec := get(t, newTestServer(t).Handler(), "/en/home")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Welcome</title>")
	assert.Contains(t, rec.Body.String(), "<h1>Welcome</h1>")
}

func TestPageCanonicalPath(t *testing.T) {
	rec := get(t, newTestServer(t).Handler(), "/en//blog/./hello")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Post hello")
}

func TestPageLanguageRedirect(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/blog/hello?ref=mail")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/en/blog/hello?ref=mail", rec.Header().Get("Location"))

	rec = get(t, h, "/de/blog")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/en/blog", rec.Header().Get("Location"))
}

func TestPageNotFound(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/fr/nulle-part")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/fr/404", rec.Header().Get("Location"))

	rec = get(t, h, "/fr/404")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>Not found</h1>")
	assert.Contains(t, rec.Body.String(), `<html lang="fr">`)
}

func TestPageMissingNotFoundView(t *testing.T) {
	files := siteViews()
	delete(files, "views/errors/404.html")
	s := New(newTestRouter(t, files), WithLogger(logging.Discard()))

	rec := get(t, s.Handler(), "/en/404")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "No 404 view found")
	assert.Contains(t, rec.Body.String(), "errors/404")
}

func TestPageEmptyRegistry(t *testing.T) {
	s := New(newTestRouter(t, fstest.MapFS{"views/.keep": {}}), WithLogger(logging.Discard()))

	rec := get(t, s.Handler(), "/en/home")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "No views found")
}

func TestPageLoadFailure(t *testing.T) {
	rec := get(t, newTestServer(t).Handler(), "/en/broken")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "view could not be loaded")
}

func TestPageAuth(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/en/account")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(t, h, "/en/account", &http.Cookie{Name: "session", Value: "abc"})
	assert.Equal(t, http.StatusOK, rec.Code)

	custom := newTestServer(t, WithAuthFunc(func(r *http.Request) bool {
		return r.Header.Get("X-User") != ""
	}))
	req := httptest.NewRequest(http.MethodGet, "/fr/compte", nil)
	req.Header.Set("X-User", "ada")
	out := httptest.NewRecorder()
	custom.Handler().ServeHTTP(out, req)
	assert.Equal(t, http.StatusOK, out.Code)
}

func TestTranslateAPI(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/api/translate?uri=/blog/hello&from=en&to=fr")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"path":"/fr/blogue/hello"}`, rec.Body.String())

	rec = get(t, h, "/api/translate?uri=/blog/hello&to=fr&slug=salut")
	assert.JSONEq(t, `{"path":"/fr/blogue/salut"}`, rec.Body.String())

	rec = get(t, h, "/api/translate?uri=/blog/hello")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, h, "/api/translate?uri=/blog/hello&to=xx")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoutesAPI(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/api/routes?lang=fr")
	require.Equal(t, http.StatusOK, rec.Code)

	var routes []RouteInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &routes))
	require.Len(t, routes, 5)
	assert.Equal(t, RouteInfo{Key: "blog.post", Path: "/fr/blogue/{slug}", View: "blog/Post", Depth: 1}, routes[2])
	assert.Equal(t, RouteInfo{Key: "account", Path: "/fr/compte", View: "Account", Auth: true}, routes[3])

	rec = get(t, h, "/api/routes?lang=de")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := middleware.NewMetrics(middleware.WithRegistry(reg))
	h := newTestServer(t, WithMetrics(m, reg)).Handler()

	get(t, h, "/en/home")
	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "localeroute_http_requests_total")
}

func TestSetRouter(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	assert.Equal(t, http.StatusFound, get(t, h, "/en/news").Code)

	tree := routetree.NewTree()
	tree.Set("news", &routetree.Node{
		View:  "Home",
		Paths: routetree.Localized(map[string]string{"en": "/news", "fr": "/actualites"}),
		Props: map[string]any{"title": "News"},
	})
	s.SetRouter(s.Router().WithRoutes(tree))

	rec := get(t, h, "/en/news")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>News</h1>")
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}
