// Package timezone owns the application clock.
//
// Every timestamp the service writes (created_at, updated_at, deleted_at) and
// every timestamp it renders goes through this package so that storage and
// responses agree on one location, configured by APP_TIMEZONE using IANA names
// such as "UTC" or "Asia/Jakarta". The location is resolved lazily on first use
// and falls back to UTC when the name cannot be loaded.
package timezone
