// Package api defines the wire types of the geleit HTTP surface:
// request and response bodies for the login endpoints plus the
// structured error envelope every failure is serialized into.
//
// The package carries no transport concerns; handlers in pkg/web
// decode into and encode from these types, and pkg/transport maps
// APIError values onto HTTP status codes.
package api
