package ir

// Version constants for the graph IR and its tools.
const (
	// IRVersion is the wire schema version written by NetDef.MarshalJSON and
	// recorded by the store.
	IRVersion = "1"

	// ToolVersion is the netir tool version.
	ToolVersion = "0.1.0"
)
