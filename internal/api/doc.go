// Package api contains the HTTP handlers, request/response models, and
// error mapping for the public REST surface. Handlers stay thin: decode,
// validate, call a service, map the result.
package api
