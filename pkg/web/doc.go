// Package web serves the geleit HTTP surface: login and logoff, the
// authenticated /api/me probe, the health endpoint and the optional
// metrics endpoint.
//
// Every /api route runs behind the session resolution chain from
// pkg/auth; routes that need an authenticated caller add the
// RequireContext gate on top. Handlers decode into the wire types of
// pkg/api and write failures through pkg/transport so every error
// leaves in the same envelope.
package web
