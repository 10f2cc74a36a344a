// Package session persists server-side web sessions for the scs session
// manager (github.com/alexedwards/scs/v2).
//
// Stores implement scs.Store, scs.CtxStore, scs.IterableStore and
// scs.IterableCtxStore. PostgreSQL is the source of truth; there is no
// in-process cache. Each store owns a sweeper that deletes expired rows out
// of band; reads only filter them.
package session
