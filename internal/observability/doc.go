// Package observability builds the zap loggers shared by the adapters,
// services and HTTP layer of the employee management system.
package observability
