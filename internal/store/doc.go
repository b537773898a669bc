// Package store provides abstractions and implementations for data
// persistence. It defines the interfaces the service layer depends on and
// the shared error taxonomy all implementations map their failures into.
package store
