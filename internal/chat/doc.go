// Package chat relays a user's conversation with the AI assistant over
// WebSocket. Each connection joins one chat session; every frame written to a
// session is delivered to all of its open connections.
package chat
