// Package jobs runs background work outside the request path.
//
// Jobs are persisted through a Store before they are queued, so that pending
// and interrupted jobs survive a restart: on Start the Runner rebuilds them
// from their stored type and payload through a Registry and queues them again.
// The package also defines the task-generation jobs (a random task for one
// user, and the periodic "[AUTO]" task for every active user) together with
// the Scheduler that submits the periodic job and the EventHandler that turns
// domain events into jobs.
package jobs
