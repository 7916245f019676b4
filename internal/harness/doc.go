// Package harness runs graph conformance scenarios.
//
// A scenario names a graph source, optionally rewrites its memory plan,
// and states what validation must conclude. The harness loads the graph
// through the compiler front-ends, applies the plan through a
// PlanningView, validates, freezes, stores the graph in an isolated
// in-memory store and reads it back before evaluating assertions.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	graph: ../graphs/chain.yaml
//	plan:
//	  - block: {mem_id: 7, x: 8, y: 4}
//	  - op: relu1
//	    mem_id: 7
//	  - op: pool1
//	    clear: true
//	expect:
//	  valid: false
//	  codes: [E221, E221]
//	assertions:
//	  - type: live_range
//	    output: c1
//	    start: 0
//	    end: 1
//
// # Assertion Types
//
//   - op_count: the graph has exactly count operators
//   - live_range: output is live from start to end (inclusive)
//   - extent: operator op needs an x by y image for its first output
//   - aliases: exactly the listed operators share arena block mem_id
//   - input_source: input index of op is read from a producer, tensor or
//     graph_input named from
//
// aliases and input_source resolve the frozen graph, so they fail when
// the graph does not validate.
//
// # Deterministic Testing
//
// Each run uses a fresh in-memory SQLite store and sequential import IDs,
// so repeated runs produce identical results and golden snapshots.
package harness
