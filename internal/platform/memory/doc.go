// Package memory provides map-backed implementations of the store interfaces.
// They are safe for concurrent use and enforce the same uniqueness and
// ownership rules as the PostgreSQL stores, but hold no data across restarts.
// Transactions are not supported: WithTx returns the receiver unchanged.
package memory
