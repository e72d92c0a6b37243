// Package router resolves localized navigation paths to views.
//
// Every path starts with a two-letter language code followed by a path
// written in that language:
//
//	/en/blog/hello-world
//	/fr/blogue/hello-world
//
// Routes are declared once in a routetree.Tree with one template per
// language. Templates may contain {name} placeholders, and nested routes
// are relative to their parent:
//
//	routes:
//	  blog:
//	    view: blog/Index
//	    paths: {en: /blog, fr: /blogue}
//	    children:
//	      post:
//	        view: blog/Post
//	        paths: {en: "{slug}", fr: "{slug}"}
//
// # Resolution
//
// Resolve is a pure state machine. A path without a supported language is
// redirected to the default language; a path that matches no route, or
// whose view is not registered, is redirected to "/{lang}/404". If the
// not-found view is itself missing the outcome is Fatal. Otherwise the view
// module is loaded through a views.Loader and returned with the route's
// auth flag, props and captured params.
//
// ResolveCurrentView applies the outcome to a Navigation and a Document and
// always returns a usable view.
//
// # Translation
//
// Translate maps a path from one language to another by resolving it and
// rebuilding it from the target language's templates:
//
//	r.Translate("/blog/hello-world", "en", "fr", nil) // "/fr/blogue/hello-world"
//
// GetRouter returns Helpers bound to a language pair for link generation and
// language switching.
package router
