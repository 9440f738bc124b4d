// Package password implements versioned credential hashing with
// transparent scheme migration.
//
// A stored hash has the form "#<scheme_id>#<blob>". Two schemes exist:
// scheme 01 is a keyed HMAC-SHA-512, scheme 02 is Argon2id in PHC
// string format. Validation reports whether a hash was produced by the
// current default scheme, so callers can re-hash old credentials at
// the one moment the clear content is available.
//
// Hashing is CPU-bound, heavily so for scheme 02, and runs on a
// bounded workpool.Pool, keeping request-serving goroutines free and
// turning overload into an explicit dispatch error.
package password
