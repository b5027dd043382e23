/*
Package invitations drives batches of TestFlight invites and reports on the
results.

The Orchestrator processes tester entries strictly in input order, one at a
time. The remote API enforces tight rate limits that make parallel entry
processing counter-productive, so the only concurrency consideration is the
token cache inside the appstore client (which is mutex-guarded regardless).
A small courtesy delay between entries stays under the implicit rate
limits; the request pipeline's reactive backoff handles the explicit ones.
Each entry's failure is captured in its outcome; a bad entry never aborts
the batch. The caller can abort the batch between entries via context
cancellation.

Progress tracks batch counters monotonically and derives percentage,
elapsed time, and an ETA. The StatusChecker answers the reconciliation
questions: is the latest build ready, and which of a set of addresses are
actually invited. The Reporter turns outcomes and statuses into a report
with stable field names that serializes to JSON and renders as text.
*/
package invitations
