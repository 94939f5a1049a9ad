// Package resolve is the orchestration core of tix. The [Resolver] answers
// "what branch (if any) is this ticket on, and is that branch in the repo
// I'm currently in?" by combining the association store, the repository
// registry, and git. The [Orchestrator] performs the mutating operations:
// associate, remove, checkout-or-create, and branch scanning.
//
// Verification is deliberately asymmetric: an association in the current
// repository is checked against live git state, while an association in a
// different, not-currently-open repository is trusted optimistically. The
// engine has no access to that working tree, and reporting its branches as
// missing would be noise, not correctness.
package resolve
