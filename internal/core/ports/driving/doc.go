// Package driving defines the interfaces the core exposes outward
// (primary/inbound ports), consumed by the CLI and any other transport.
package driving
