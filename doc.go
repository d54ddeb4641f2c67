/*
Package lactoserv implements the core runtime of a self-contained HTTP(S)/
HTTP2 application server.

Component tree

The server is organized as a tree of components rooted at a single webapp
root, created by calling New. Each component has a name-path, a lifecycle
state machine, a logger and zero or more children:

	root, err := lactoserv.New(ctx, lactoserv.Config{AppName: "example"})
	endpoints := root.Endpoints()
	apps := root.Applications()

Endpoints accept connections, terminate TLS, decode HTTP and dispatch each
request to one application. Applications are composed from routers
(HostRouter, PathRouter, SuffixRouter, SerialRouter) that forward a request
to the next most specific match.

Request handling

A request handler (Application.Handle) receives a Request and a
DispatchInfo and returns a HandlerResult carrying a *FullResponse or a
*StatusResponse, NotHandled ("not handled, try the next candidate"), or an
error. The endpoint converts NotHandled into 404 and an error into 500,
expands StatusResponse into a full response, adjusts the result for
conditional and range requests, and sends it.
*/
package lactoserv
