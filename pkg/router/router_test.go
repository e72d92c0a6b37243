package router

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rerrors "github.com/vango-dev/localeroute/internal/errors"
	"github.com/vango-dev/localeroute/pkg/routetree"
	"github.com/vango-dev/localeroute/pkg/views"
)

type fakeNav struct {
	path      string
	redirects []string
}

func (n *fakeNav) CurrentPath() string     { return n.path }
func (n *fakeNav) Redirect(target string) { n.redirects = append(n.redirects, target) }

type panel struct{ title, message string }

type fakeDoc struct {
	lang   string
	sets   int
	panels []panel
}

func (d *fakeDoc) Lang() string { return d.lang }
func (d *fakeDoc) SetLang(lang string) {
	d.lang = lang
	d.sets++
}
func (d *fakeDoc) ShowError(title, message string) {
	d.panels = append(d.panels, panel{title, message})
}

type countingObserver struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (o *countingObserver) ObserveResolution(outcome Outcome, _ string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func testViews() views.Registry[string] {
	reg := views.Registry[string]{}
	for _, v := range []string{"Home", "blog/Index", "blog/Post", "user/Settings", "errors/404"} {
		reg[views.ViewPath(v, "html")] = views.Static(v + "-module")
	}
	reg[views.ViewPath("docs/Page", "html")] = func(context.Context) (string, error) {
		return "", errors.New("bundle corrupted")
	}
	return reg
}

func newTestRouter(t *testing.T, reg views.Registry[string], opts ...Option) *Router[string] {
	t.Helper()
	r, err := New(Config[string]{
		SupportedLangs: []string{"en", "fr"},
		Routes:         testTree(t),
		Views:          reg,
	}, opts...)
	require.NoError(t, err)
	return r
}

func TestNewAppliesDefaults(t *testing.T) {
	r, err := New(Config[string]{})
	require.NoError(t, err)

	cfg := r.Config()
	assert.Equal(t, "en", cfg.DefaultLang)
	assert.Equal(t, "en", cfg.CurrentLang)
	assert.Equal(t, []string{"en"}, cfg.SupportedLangs)
	assert.Equal(t, views.DefaultExtension, cfg.ViewsExtension)
	assert.Equal(t, 0, r.Tree().Len())
}

func TestNewKeepsOverrides(t *testing.T) {
	r, err := New(Config[string]{DefaultLang: "fr", SupportedLangs: []string{"fr", "de"}, ViewsExtension: "jsx"})
	require.NoError(t, err)

	cfg := r.Config()
	assert.Equal(t, "fr", cfg.DefaultLang)
	assert.Equal(t, "en", cfg.CurrentLang)
	assert.Equal(t, []string{"fr", "de"}, cfg.SupportedLangs)
	assert.Equal(t, "jsx", r.Loader().Extension())
}

func TestSplitLang(t *testing.T) {
	tests := []struct {
		path, lang, rest string
		ok               bool
	}{
		{"/en/home", "en", "home", true},
		{"/fr/", "fr", "", true},
		{"/fr", "fr", "", true},
		{"/home", "", "", false},
		{"/EN/home", "", "", false},
		{"/", "", "", false},
		{"en/home", "", "", false},
	}
	for _, tt := range tests {
		lang, rest, ok := SplitLang(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.lang, lang, tt.path)
		assert.Equal(t, tt.rest, rest, tt.path)
	}
}

func TestResolve(t *testing.T) {
	r := newTestRouter(t, testViews())
	ctx := context.Background()

	tests := []struct {
		name     string
		path     string
		outcome  Outcome
		lang     string
		redirect string
		module   string
		code     string
	}{
		{"rendered", "/en/home", Rendered, "en", "", "Home-module", ""},
		{"rendered french", "/fr/blogue/salut", Rendered, "fr", "", "blog/Post-module", ""},
		{"language root", "/en/", Rendered, "en", "", "Home-module", ""},
		{"language root without slash", "/fr", Rendered, "fr", "", "Home-module", ""},
		{"missing language", "/home", RedirectLanguage, "", "/en/home", "", rerrors.CodeUnsupportedLanguage},
		{"missing language at root", "/", RedirectLanguage, "", "/en/", "", rerrors.CodeUnsupportedLanguage},
		{"unsupported language", "/de/home", RedirectLanguage, "", "/en/home", "", rerrors.CodeUnsupportedLanguage},
		{"unsupported language root", "/de/", RedirectLanguage, "", "/en/de/", "", rerrors.CodeUnsupportedLanguage},
		{"unknown route", "/en/nope", RedirectNotFound, "en", "/en/404", "", rerrors.CodeRouteNotFound},
		{"unregistered view", "/en/only-en", RedirectNotFound, "en", "/en/404", "", rerrors.CodeViewNotFound},
		{"not found page", "/en/404", Rendered, "en", "", "errors/404-module", ""},
		{"loader error", "/en/docs/guide", Failed, "en", "", "", rerrors.CodeViewLoadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve(ctx, tt.path)
			assert.Equal(t, tt.outcome, res.Outcome, res.Outcome.String())
			assert.Equal(t, tt.lang, res.Lang)
			assert.Equal(t, tt.redirect, res.Redirect)
			assert.Equal(t, tt.module, res.View.Module)
			assert.Equal(t, tt.outcome != Rendered, res.View.Null)
			assert.Equal(t, tt.code, res.Code)
		})
	}
}

func TestResolveBareLanguagePrefix(t *testing.T) {
	ctx := context.Background()

	// A bare "/xx" is resolved like "/xx/", not redirected to "/en/xx".
	r := newTestRouter(t, testViews())
	for _, lang := range []string{"en", "fr"} {
		bare := r.Resolve(ctx, "/"+lang)
		slash := r.Resolve(ctx, "/"+lang+"/")
		assert.Equal(t, slash.Outcome, bare.Outcome, lang)
		assert.Equal(t, slash.Route.FullPath, bare.Route.FullPath, lang)
		assert.Equal(t, Rendered, bare.Outcome, lang)
		assert.Equal(t, "root", bare.Route.FullPath, lang)
	}

	tree, err := routetree.Parse([]byte("routes:\n  home:\n    view: Home\n    paths: {en: /home}\n"))
	require.NoError(t, err)
	noRoot, err := New(Config[string]{Routes: tree, Views: testViews()})
	require.NoError(t, err)

	for _, path := range []string{"/en", "/en/"} {
		res := noRoot.Resolve(ctx, path)
		assert.Equal(t, RedirectNotFound, res.Outcome, path)
		assert.Equal(t, "/en/404", res.Redirect, path)
		assert.Equal(t, rerrors.CodeRouteNotFound, res.Code, path)
	}
}

func TestResolveViewDetails(t *testing.T) {
	r := newTestRouter(t, testViews())

	res := r.Resolve(context.Background(), "/fr/utilisateur/42/parametres")
	require.Equal(t, Rendered, res.Outcome)
	assert.Equal(t, "user.settings", res.Route.FullPath)
	assert.True(t, res.View.Auth)
	assert.Equal(t, "settings", res.View.Props["section"])
	assert.Equal(t, Params{"id": "42"}, res.View.Params)
}

func TestResolveNotFoundPageWithoutView(t *testing.T) {
	reg := testViews()
	delete(reg, views.ViewPath("errors/404", "html"))
	r := newTestRouter(t, reg)

	res := r.Resolve(context.Background(), "/en/nope")
	assert.Equal(t, RedirectNotFound, res.Outcome)

	res = r.Resolve(context.Background(), "/en/404")
	require.Equal(t, Fatal, res.Outcome)
	assert.Equal(t, rerrors.CodeNoNotFoundView, res.Code)
	assert.True(t, errors.Is(res.Err, rerrors.New(rerrors.CodeNoNotFoundView)))
	assert.True(t, errors.Is(res.Err, views.ErrViewNotFound))
}

func TestResolveLoaderErrorIsCoded(t *testing.T) {
	r := newTestRouter(t, testViews())
	res := r.Resolve(context.Background(), "/en/docs/guide")
	require.Equal(t, Failed, res.Outcome)
	assert.True(t, errors.Is(res.Err, rerrors.New(rerrors.CodeViewLoadFailed)))
}

func TestResolveCurrentView(t *testing.T) {
	r := newTestRouter(t, testViews())
	ctx := context.Background()

	t.Run("renders and syncs language", func(t *testing.T) {
		nav := &fakeNav{path: "/fr/accueil"}
		doc := &fakeDoc{lang: "en"}
		v := r.ResolveCurrentView(ctx, nav, doc)
		assert.Equal(t, "Home-module", v.Module)
		assert.False(t, v.Null)
		assert.Equal(t, "fr", doc.lang)
		assert.Empty(t, nav.redirects)
	})

	t.Run("does not touch a matching language", func(t *testing.T) {
		doc := &fakeDoc{lang: "en"}
		r.ResolveCurrentView(ctx, &fakeNav{path: "/en/home"}, doc)
		assert.Equal(t, 0, doc.sets)
	})

	t.Run("redirects unsupported language", func(t *testing.T) {
		nav := &fakeNav{path: "/de/home"}
		doc := &fakeDoc{lang: "en"}
		v := r.ResolveCurrentView(ctx, nav, doc)
		assert.True(t, v.Null)
		assert.Nil(t, v.Params)
		assert.Nil(t, v.Props)
		assert.False(t, v.Auth)
		assert.Equal(t, []string{"/en/home"}, nav.redirects)
		assert.Equal(t, 0, doc.sets)
	})

	t.Run("redirects unknown route and syncs language", func(t *testing.T) {
		nav := &fakeNav{path: "/fr/inconnu"}
		doc := &fakeDoc{lang: "en"}
		v := r.ResolveCurrentView(ctx, nav, doc)
		assert.True(t, v.Null)
		assert.Equal(t, []string{"/fr/404"}, nav.redirects)
		assert.Equal(t, "fr", doc.lang)
		assert.Empty(t, doc.panels)
	})

	t.Run("loader failure shows no panel", func(t *testing.T) {
		nav := &fakeNav{path: "/en/docs/guide"}
		doc := &fakeDoc{lang: "en"}
		v := r.ResolveCurrentView(ctx, nav, doc)
		assert.True(t, v.Null)
		assert.Empty(t, nav.redirects)
		assert.Empty(t, doc.panels)
	})
}

func TestResolveCurrentViewMissingNotFoundView(t *testing.T) {
	reg := testViews()
	delete(reg, views.ViewPath("errors/404", "html"))
	r := newTestRouter(t, reg)

	nav := &fakeNav{path: "/en/unknown"}
	doc := &fakeDoc{lang: "en"}
	r.ResolveCurrentView(context.Background(), nav, doc)
	assert.Equal(t, []string{"/en/404"}, nav.redirects)
	assert.Empty(t, doc.panels)

	nav = &fakeNav{path: "/en/404"}
	v := r.ResolveCurrentView(context.Background(), nav, doc)
	assert.True(t, v.Null)
	assert.Empty(t, nav.redirects)
	require.Len(t, doc.panels, 1)
	assert.Equal(t, "No 404 view found", doc.panels[0].title)
	assert.Contains(t, doc.panels[0].message, "errors/404")
}

func TestNullModule(t *testing.T) {
	r := newTestRouter(t, testViews(), WithNullModule("noop"))
	v := r.ResolveCurrentView(context.Background(), &fakeNav{path: "/xx"}, &fakeDoc{})
	assert.Equal(t, "noop", v.Module)
	assert.True(t, v.Null)

	// A null module of the wrong type is ignored.
	r = newTestRouter(t, testViews(), WithNullModule(42))
	assert.Equal(t, "", r.NullView().Module)
}

func TestObserver(t *testing.T) {
	obs := &countingObserver{}
	r := newTestRouter(t, testViews(), WithObserver(obs))
	r.Resolve(context.Background(), "/en/home")
	r.Resolve(context.Background(), "/zz/home")
	assert.Equal(t, []Outcome{Rendered, RedirectLanguage}, obs.outcomes)
}

func TestGetRoutes(t *testing.T) {
	modA := routetree.NewTree()
	modA.Set("a", &routetree.Node{View: "A", Paths: routetree.Localized(map[string]string{"en": "/a"})})
	modB := routetree.NewTree()
	modB.Set("b", &routetree.Node{View: "B", Paths: routetree.Localized(map[string]string{"en": "/b"})})
	modules := map[string]*routetree.Tree{"routes/a.yaml": modA, "routes/b.yaml": modB}

	plain, err := New(Config[string]{Routes: testTree(t)})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, plain.GetRoutes(modules).Keys())
	assert.Equal(t, "root", plain.GetRoutes(nil).Keys()[0])

	withModules, err := New(Config[string]{Routes: testTree(t), RouteModules: modules})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, withModules.GetRoutes(nil).Keys())
	assert.Equal(t, []string{"a", "b"}, withModules.Tree().Keys())
}

func TestGetViews(t *testing.T) {
	r := newTestRouter(t, testViews())
	doc := &fakeDoc{}
	assert.NotNil(t, r.GetViews(doc))
	assert.Empty(t, doc.panels)

	empty := newTestRouter(t, views.Registry[string]{})
	assert.Nil(t, empty.GetViews(doc))
	require.Len(t, doc.panels, 1)
	assert.Equal(t, "No views found", doc.panels[0].title)
	assert.Contains(t, doc.panels[0].message, "views folder")
}

func TestWithRoutesSharesLoader(t *testing.T) {
	r := newTestRouter(t, testViews())
	require.Equal(t, Rendered, r.Resolve(context.Background(), "/en/home").Outcome)
	require.Equal(t, 1, r.Loader().Len())

	tree := routetree.NewTree()
	tree.Set("start", &routetree.Node{View: "Home", Paths: routetree.Localized(map[string]string{"en": "/start"})})
	next := r.WithRoutes(tree)

	assert.Same(t, r.Loader(), next.Loader())
	assert.Equal(t, Rendered, next.Resolve(context.Background(), "/en/start").Outcome)
	assert.Equal(t, RedirectNotFound, next.Resolve(context.Background(), "/en/home").Outcome)
	assert.Equal(t, Rendered, r.Resolve(context.Background(), "/en/home").Outcome)
	assert.Equal(t, 1, r.Loader().Len())
}

func TestAlternates(t *testing.T) {
	r := newTestRouter(t, testViews())
	assert.Equal(t, []Alternate{
		{Lang: "en", Href: "/en/blog/hello"},
		{Lang: "fr", Href: "/fr/blogue/hello"},
	}, r.Alternates("/blog/hello", "en"))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "rendered", Rendered.String())
	assert.Equal(t, "fatal", Fatal.String())
	assert.Equal(t, "unknown", Outcome(99).String())
	assert.True(t, RedirectNotFound.IsRedirect())
	assert.False(t, Failed.IsRedirect())
}
