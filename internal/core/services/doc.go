// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The managed outline protocol is split into small components:
//
//   - TagStore: typed access to node tags
//   - Classifier: maps a node to its Role
//   - RootResolver: finds the owning root one parent hop away
//   - ConsistencyValidator: checks a child's back-reference
//   - GroupManager: produces or repairs the {root, text, outline} triple
//   - OutlineService: sequences GroupManager with the renderer
//
// Services are pure Go with no CGO or external dependencies.
package services
