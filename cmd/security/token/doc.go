// Package token generates the opaque random strings used as remember-me
// lookup ids and secrets.
//
// Values are base64url (no padding) encodings of crypto/rand bytes, so they
// are cookie-safe and never contain the space used as the cookie separator.
package token
