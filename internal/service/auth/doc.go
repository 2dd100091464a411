// Package auth implements password hashing, bearer tokens and the account
// lifecycle: registration, login, and resolution of the current user from a
// token.
package auth
