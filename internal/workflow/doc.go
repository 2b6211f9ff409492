// Package workflow is the orchestration layer of the pipeline. It wires
// eligibility, task generation, assignment, the lifecycle state machine,
// and archival together on top of the production store, and is the only
// package the CLI mutates projects through.
package workflow
