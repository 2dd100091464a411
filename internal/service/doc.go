// Package service contains the application use cases for tasks and chat.
// Services receive their stores through constructor injection and never
// depend on a concrete storage backend. Authentication lives in the auth
// subpackage.
package service
