// Package errors provides coded, actionable errors for localeroute.
//
// Each error has a unique code (e.g., "R002") that maps to a category, a
// short message, a detailed explanation, an optional suggestion and a
// documentation URL.
//
// # Error Codes
//
//   - R001-R019: routing and view resolution
//   - R020-R039: configuration and route modules
//   - R040-R059: command line
//
// Most routing conditions are recovered by redirecting (unsupported
// language, unknown route, missing view). Only R001 and R002 reach the
// user, through the error panel rendered by Panel and RenderPanel.
//
// # Usage
//
//	err := errors.New(errors.CodeInvalidLanguage).
//	    WithLocation("localeroute.yaml", 3, 0).
//	    WithDetail(`"english" is not a two-letter code`)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR R022: Invalid language code
//	//
//	//   localeroute.yaml:3
//	//
//	//   "english" is not a two-letter code
//	//
//	//   Hint: Use codes such as "en", "fr" or "de".
//	//
//	//   Learn more: https://localeroute.dev/docs/errors/R022
package errors
