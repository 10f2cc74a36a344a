// Package identity owns user accounts: registration, lookup and primary
// (username + password) authentication.
//
// Stores are persistence only. Password policy and hashing come from
// cmd/security/password and are applied by the store before insert.
package identity
