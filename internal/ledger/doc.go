// Package ledger implements the append-only, hash-linked claim log of a
// Helios node.
//
// The chain begins with a genesis entry (claim "genesis_000", submitted by
// the reserved system identity) whose PrevHash is the all-zero SentinelHash.
// Every subsequent entry records the SHA-256 of its predecessor, and its own
// hash is computed once, at append time, over the RFC 8785 canonical JSON of
// the entry's fields.
//
// Entry hashes cover the embedded claim's state at append time only. A
// claim's verification history and status mutate afterwards through
// ApplyVerdicts, so the chain does not detect in-place tampering with those
// fields. This mirrors the protocol as designed; see Verify.
package ledger
