// Package internal holds the request-to-controller core of the CMS.
//
// Import "github.com/MartinPJB/BLOG-CMS" instead; it re-exports the public API.
//
// # Core Types
//
//   - RequestContext: the parsed routing view of one request (route, action,
//     opt_param and the remaining GET/POST parameters)
//   - Router: the route table plus Dispatch, which resolves a request to a
//     bound controller action under an access level
//   - Target: a controller constructor and action bound with Bind
//   - Auth: the caller identity passed explicitly to Dispatch
//   - Context: what a controller sees of the request (render, redirect,
//     messages, session, logging); it implements context.Context
//   - App: the HTTP edge that ties the above to chi, sessions and views
//
// # Registering Routes
//
//	r := internal.NewRouter(log)
//	r.AddRoute("articles", "list", internal.Bind(newArticles, (*Articles).List))
//	r.AddRoute("admin", "save", internal.Bind(newAdmin, (*Admin).Save),
//		internal.WithAccessLevel(internal.Admin),
//		internal.WithMethod(http.MethodPost),
//	)
//
// A later registration of the same (route, action) replaces the earlier one.
//
// # Dispatch
//
// Dispatch stops at the first failing check:
//
//  1. no route, or no action under it: 404
//  2. method differs from the registered one: 405
//  3. caller level below the route level: 403
//
// The controller is constructed only after all three pass. An empty action
// is looked up as "index".
//
// # URL Shapes
//
// The App accepts both /?route=articles&action=show&opt_param=4 and
// /articles/show/4. Path segments override the query string.
//
// # Errors
//
// Routing failures are *HTTPError values carrying the status and the
// requested route. The default ErrorHandler renders the "error" view with
// errorCode and controllerType.
package internal
