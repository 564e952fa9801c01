// Package manifest accumulates the audit trail of a pipeline run:
// provenance of the source document, a per-stage processing log,
// validator-reported quality metadata, and output artifact details.
// The finalized manifest is serialized next to the output artifact so
// every invocation is auditable, whether it succeeded or failed.
package manifest
