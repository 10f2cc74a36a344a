// Package remember implements persistent "remember me" login tokens.
//
// A token has two independent random halves. The lookup id is stored in
// plaintext and is the only thing ever queried; the secret is stored as a
// salted one-way hash and checked with a constant-time verify. A salted hash
// cannot be used as a lookup key, which is why the halves are separate.
//
// Unknown, expired and mismatched tokens are reported identically and cost
// one hash verification each. Expired rows are removed out of band by the
// vault's own sweeper, never on the validation path.
package remember
