// Package api implements the HTTP surface of the labeling service: project
// and upload management, the annotator review workflow, client feedback, and
// annotator authentication. Handlers validate input, call services, and map
// service errors to HTTP status codes; all business rules live below them.
package api
