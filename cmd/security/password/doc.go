// Package password provides the one-way secret hashing primitives for station.
//
// It hashes user passwords and remember-me secrets with Argon2id (default) or
// bcrypt, and verifies against either encoding so rows written by an older
// bcrypt deployment keep validating after a switch to Argon2id.
//
// Security notes:
// - Encoded hashes are treated as untrusted input during Verify.
// - Verification refuses Argon2id hashes whose parameters exceed reasonable bounds.
// - Comparisons are constant time.
package password
