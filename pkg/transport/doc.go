// Package transport provides the HTTP plumbing shared by every route:
// middleware composition, request IDs, panic recovery, request logging
// and the mapping of API errors onto HTTP responses.
package transport
