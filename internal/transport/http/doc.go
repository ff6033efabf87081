// Package http contains the chi HTTP handlers for the dashboard API.
// Handlers hold no business logic: they validate the date-range input,
// delegate to the dashboard service and render the result, mapping
// service errors through the shared RFC 7807 error handler.
package http
