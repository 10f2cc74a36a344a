// Package authapi exposes the account endpoints under /auth and the
// remember-me fallback that re-establishes an expired session from the
// x-remember-me cookie.
package authapi
