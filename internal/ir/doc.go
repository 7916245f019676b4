// Package ir provides the in-memory intermediate representation of a trained
// network graph: operators, constant tensors, graph attributes, the memory
// arena used to alias operator outputs onto shared buffers, and the boundary
// descriptors for subgraphs offloaded to a fixed-function accelerator.
//
// All other internal packages import ir; ir imports nothing internal.
//
// Lifecycle:
//   - Builder phase: a loader populates a NetBuilder through AddOp/AddArg/
//     AddTensor and the returned handles.
//   - Planning phase: a Planner writes only the memory arena and operator
//     mem_ids through a PlanningView (NetBuilder.ApplyPlan).
//   - Frozen: NetBuilder.Build validates the whole graph and returns a
//     *NetDef that exposes no mutating operations. A NetDef may be read by
//     any number of goroutines without synchronization.
//
// Error taxonomy:
//   - Presence violations (reading an unset optional field) return
//     *PresenceError at the call site.
//   - Bounds violations (indexed access out of range) return *BoundsError.
//   - Referential, shape and aliasing violations are graph-level and are
//     reported together as ValidationErrors by Validate/Build.
//
// Tensor buffers are never owned by this package. TensorProto.Data returns
// the caller's slice as-is and must outlive the graph.
package ir
