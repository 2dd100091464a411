// Package events lets services announce domain events, such as a random
// task being requested, without knowing who reacts to them.
// The background job runner is the main subscriber.
package events
