// Package httphost serves resolved views over HTTP.
//
// The host is the navigation environment and the document for the router:
// each GET request path is resolved with ResolveCurrentView, redirects become
// 302 responses, a missing not-found view renders the error panel and
// rendered views are written into an HTML shell whose lang attribute is the
// resolved language.
//
// Endpoints:
//
//	GET /healthz        liveness
//	GET /metrics        Prometheus, when metrics are enabled
//	GET /api/translate  ?uri=&from=&to= plus params to substitute
//	GET /api/routes     ?lang= flattened route listing
//	GET /ws             soft navigation over WebSocket
//	GET /*              pages
//
// Views are Page modules; DecodeTemplate turns view files into html/template
// pages.
package httphost
