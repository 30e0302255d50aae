package domain

// ManagedGroup is the triple a run produces or repairs.
type ManagedGroup struct {
	Root    NodeID
	Text    NodeID
	Outline NodeID
}

// Inspection describes how the protocol sees a node without changing it.
type Inspection struct {
	// Target is the inspected node.
	Target Node

	// Role is the classified role of Target.
	Role Role

	// Root is the resolved owning root, zero when resolution failed.
	Root NodeID

	// Text and Outline are the children a rescan would pick (last wins).
	Text    NodeID
	Outline NodeID

	// Member is the membership verdict of Text against Root.
	Member bool

	// Err is the error a run would stop on, nil when a run would proceed.
	Err error

	// OutlineErr reports an outline child that does not reference Root.
	// It never stops a run since the outline is recreated.
	OutlineErr error
}

// OutlineSummary counts the outcomes of a batch run.
type OutlineSummary struct {
	Outlined []NodeID
	Skipped  []NodeID
	Failed   map[NodeID]error
}
