// Package store provides SQLite-backed persistence for frozen graphs.
//
// Graphs are content-addressed: the primary key of a stored graph is its
// ir.GraphID, so writing the same graph twice is a no-op. The store keeps:
//   - Graphs: the wire-format JSON body plus name, version and op count
//   - Tensors: per-graph tensor digests, for finding graphs that share weights
//   - Imports: one provenance row per import, keyed by a UUIDv7
//
// # Determinism
//
// All list queries order by a stable key with COLLATE BINARY so results
// are identical across runs. Import ordering uses a logical seq, never
// timestamps.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
