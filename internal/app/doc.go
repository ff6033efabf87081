// Package app assembles the dashboard service: configuration, logging,
// the one-time dataset load, the chi router with its middleware chain,
// and the HTTP server lifecycle.
package app
