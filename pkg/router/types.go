package router

import (
	"github.com/vango-dev/localeroute/pkg/routetree"
)

// Navigation is the environment the current path comes from. In a browser
// this is window.location; the HTTP host adapts the request and response.
type Navigation interface {
	// CurrentPath returns the path being resolved, e.g. "/fr/blogue/bonjour".
	CurrentPath() string

	// Redirect asks the environment to navigate to target.
	Redirect(target string)
}

// Document is the host document whose language attribute is kept in sync
// with the resolved language and which can display the error panel.
type Document interface {
	Lang() string
	SetLang(lang string)
	ShowError(title, message string)
}

// View is a resolved, loaded view.
type View[M any] struct {
	// Module is the loaded view module.
	Module M

	// Auth mirrors the route's auth flag.
	Auth bool

	// Props are the route's static properties.
	Props map[string]any

	// Params are the values captured from the path.
	Params Params

	// Null is set for the null view returned when nothing could be rendered.
	Null bool
}

// Outcome classifies the result of resolving a path.
type Outcome uint8

const (
	// Rendered means a view was matched and loaded.
	Rendered Outcome = iota

	// RedirectLanguage means the path lacked a supported language code.
	RedirectLanguage

	// RedirectNotFound means no route or no view matched.
	RedirectNotFound

	// Failed means the view loader returned an error.
	Failed

	// Fatal means the not-found view itself is missing.
	Fatal
)

// String returns the outcome name used in logs and metric labels.
func (o Outcome) String() string {
	switch o {
	case Rendered:
		return "rendered"
	case RedirectLanguage:
		return "redirect_language"
	case RedirectNotFound:
		return "redirect_not_found"
	case Failed:
		return "failed"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// IsRedirect reports whether the outcome carries a redirect target.
func (o Outcome) IsRedirect() bool {
	return o == RedirectLanguage || o == RedirectNotFound
}

// Result is the outcome of Resolve. Resolve never performs side effects; the
// caller applies Redirect or shows Err as it sees fit.
type Result[M any] struct {
	Outcome Outcome

	// Lang is the language code taken from the path. It is empty when the
	// outcome is RedirectLanguage.
	Lang string

	// Route is the match for the path within Lang.
	Route routetree.Resolved

	// View is the loaded view for Rendered, the null view otherwise.
	View View[M]

	// Redirect is the target path for redirect outcomes.
	Redirect string

	// Err describes Failed and Fatal outcomes.
	Err error

	// Code is the registered error code explaining any outcome other than
	// Rendered, e.g. R004 when no route matched.
	Code string
}

// Observer receives a notification for every resolution.
type Observer interface {
	ObserveResolution(outcome Outcome, lang string)
}
