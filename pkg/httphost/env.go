package httphost

// requestNav is the navigation environment of one HTTP request. Redirects
// are recorded and applied once resolution is done.
type requestNav struct {
	path     string
	redirect string
}

func (n *requestNav) CurrentPath() string { return n.path }

func (n *requestNav) Redirect(target string) { n.redirect = target }

// document collects what resolution wants shown in the response document.
type document struct {
	lang     string
	errTitle string
	errMsg   string
}

func (d *document) Lang() string { return d.lang }

func (d *document) SetLang(lang string) { d.lang = lang }

func (d *document) ShowError(title, message string) {
	d.errTitle = title
	d.errMsg = message
}

func (d *document) hasError() bool { return d.errTitle != "" }
