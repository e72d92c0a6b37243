package errors

import "sort"

const docBase = "https://localeroute.dev/docs/errors/"

// Registered error codes.
const (
	CodeEmptyViewRegistry   = "R001"
	CodeNoNotFoundView      = "R002"
	CodeViewNotFound        = "R003"
	CodeRouteNotFound       = "R004"
	CodeUnsupportedLanguage = "R005"
	CodeViewLoadFailed      = "R006"

	CodeConfigNotFound   = "R020"
	CodeConfigInvalid    = "R021"
	CodeInvalidLanguage  = "R022"
	CodeInvalidRouteFile = "R023"

	CodeInvalidArgs = "R040"
)

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

var registry = map[string]Template{
	// Routing (R001-R019)

	CodeEmptyViewRegistry: {
		Category:   CategoryViews,
		Message:    "No views found",
		Detail:     "The view registry is empty.",
		Suggestion: "Please check router config or your views folder and make sure it contains the correct files.",
	},
	CodeNoNotFoundView: {
		Category:   CategoryViews,
		Message:    "No 404 view found",
		Detail:     "A route could not be resolved and the not-found view is missing as well.",
		Suggestion: `Be sure to create an "errors/404" view in your views folder.`,
	},
	CodeViewNotFound: {
		Category: CategoryViews,
		Message:  "View not found",
		Detail:   "The matched route names a view that is not in the registry.",
	},
	CodeRouteNotFound: {
		Category: CategoryRouting,
		Message:  "No route found",
		Detail:   "No route template matches the requested path in this language.",
	},
	CodeUnsupportedLanguage: {
		Category: CategoryRouting,
		Message:  "Language not supported",
		Detail:   "The path does not start with a supported two-letter language code.",
	},
	CodeViewLoadFailed: {
		Category: CategoryViews,
		Message:  "View load failed",
		Detail:   "The view loader returned an error.",
	},

	// Configuration (R020-R039)

	CodeConfigNotFound: {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create a localeroute.yaml file or pass --config.",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file could not be parsed or failed validation.",
	},
	CodeInvalidLanguage: {
		Category:   CategoryConfig,
		Message:    "Invalid language code",
		Detail:     "Language codes must be lowercase two-letter ISO 639-1 codes.",
		Suggestion: `Use codes such as "en", "fr" or "de".`,
	},
	CodeInvalidRouteFile: {
		Category: CategoryConfig,
		Message:  "Invalid route module",
		Detail:   "A route module could not be read or parsed.",
	},

	// CLI (R040-R059)

	CodeInvalidArgs: {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
	},
}

// Codes returns all registered error codes in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Lookup returns the template for an error code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
