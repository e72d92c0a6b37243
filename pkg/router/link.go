package router

// Alternate is the same page in another supported language.
type Alternate struct {
	Lang string `json:"lang"`
	Href string `json:"href"`
}

// Alternates translates uri, written in fromLang, into every supported
// language. The order follows SupportedLangs. The result feeds hreflang
// links and language pickers.
func (r *Router[M]) Alternates(uri, fromLang string) []Alternate {
	out := make([]Alternate, 0, len(r.cfg.SupportedLangs))
	for _, lang := range r.cfg.SupportedLangs {
		out = append(out, Alternate{
			Lang: lang,
			Href: r.Translate(uri, fromLang, lang, nil),
		})
	}
	return out
}
