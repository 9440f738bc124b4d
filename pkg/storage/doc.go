// Package storage defines the identity store contract shared by the
// storage backends (memory, postgres), along with sentinel errors and
// tenant context helpers.
//
// The store owns credential records entirely: it assigns ids and the
// two per-credential salts. Callers only ever read records and write
// back a replacement stored hash.
package storage
