package router

import "strings"

// Helpers translates paths into one target language.
type Helpers struct {
	// To is the target language.
	To string

	// From is the language of the paths passed to R.
	From string

	translate func(uri, from, to string, extra map[string]string) string
}

// GetRouter returns helpers that translate from fromLang into toLang.
// An empty toLang defaults to the current language, then the default
// language, then "en". An empty fromLang defaults to "en".
func (r *Router[M]) GetRouter(toLang, fromLang string) Helpers {
	if toLang == "" {
		toLang = firstNonEmpty(r.cfg.CurrentLang, r.cfg.DefaultLang, "en")
	}
	if fromLang == "" {
		fromLang = "en"
	}
	return Helpers{To: toLang, From: fromLang, translate: r.Translate}
}

// R translates uri for link generation. params override captured values.
func (h Helpers) R(uri string, params map[string]string) string {
	return h.translate(uri, h.From, h.To, params)
}

// SwitchLanguage translates the navigation's current path into the target
// language, redirects to it and returns it. The current path's own language
// prefix is used as the source language when present.
func (h Helpers) SwitchLanguage(nav Navigation) string {
	current := nav.CurrentPath()
	from, rest := h.From, strings.TrimPrefix(current, "/")
	if lang, remainder, ok := SplitLang(current); ok {
		from, rest = lang, remainder
	}

	target := h.translate(rest, from, h.To, nil)
	nav.Redirect(target)
	return target
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
