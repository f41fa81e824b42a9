// Package services contains the core application services: indexing,
// retrieval and document management. Services depend only on the port
// interfaces, so storage and embedding backends are swappable.
package services
