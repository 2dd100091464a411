// Package postgres implements the store interfaces on PostgreSQL through the
// pgx stdlib driver.
//
// Users, tasks and jobs use database/sql against a store.DBTX so they can run
// inside a transaction. Chat sessions and messages are mapped with sqlx.
// Schema changes live in the embedded goose migrations.
package postgres
