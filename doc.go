// Package backend provides the Snapgrove API server.

// This package contains the main application entry point. The actual API
// documentation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/auth: Authentication and authorization services
// - internal/fingerprint: Canonical request fingerprinting
// - internal/middleware: HTTP middleware (request coalescing, rate limiting, etc.)
// - internal/storage: File storage (S3) operations
// - internal/database: Database connection and migrations
// - internal/cache: Redis client wrapper
// - internal/metrics: Prometheus metrics
// - internal/telemetry: OpenTelemetry tracing
// - internal/seed: Development and test data seeding

// See the individual package documentation for detailed API reference.
package backend
