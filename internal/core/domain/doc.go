// Package domain contains the core business entities and errors for
// ragstore: documents, chunk groups, chunks, retrieval results, and the
// typed error taxonomy shared by all stores and services.
package domain
