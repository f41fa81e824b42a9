// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the relational document store, the vector
// store, embedding services, text extraction and progress reporting.
package driven
