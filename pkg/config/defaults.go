package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "homeserve"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Minimum time before a booking's scheduled slot during which the
	// customer can no longer cancel it.
	DefaultCancelLeadWindow = 24 * time.Hour

	// Advisory slot locks auto-expire so an abandoned create attempt cannot
	// block a slot forever.
	DefaultSlotLockTTL = 10 * time.Second

	DefaultMaxBatchBookings = 20

	DefaultPaginationLimit = 100
)
