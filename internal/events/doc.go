// Package events decouples request-path services from background task
// creation. A service emits a TaskRequestEvent describing the work it
// wants done; whichever handlers are registered on the emitter decide
// how that work actually gets scheduled. Neither side imports the other.
package events
