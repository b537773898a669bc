// Package service holds the application-level services that orchestrate
// domain logic, persistence, background tasks, and AI generation. Handlers
// call services; services call stores and emit events. Services never
// import the api package.
package service
