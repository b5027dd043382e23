/*
Package appstore implements the App Store Connect client used to provision
TestFlight beta testers.

The package is organized around a small number of collaborating components:

# Credentials

Credentials hold the API key identifier, issuer identifier, and the ES256
private key. They are loaded either from a credentials directory (an env
file plus a referenced PEM key file, see LoadCredentials) or from a
HashiCorp Vault KV v2 secret (see VaultCredentialSource). Credential
problems are fatal and surface as *CredentialError before any network
activity.

# Token issuance

TokenSource produces short-lived signed JWTs for API authentication. Tokens
are valid for 20 minutes (the remote maximum) and cached; a cached token is
never handed out within one minute of its expiry, a fresh one is signed
instead. Refresh is guarded by a mutex so concurrent callers never trigger
redundant signing.

# Request pipeline

Client is the single choke point for all outbound calls. Every attempt
obtains a token, issues the HTTP request with a 30 second timeout and
bearer authentication, and classifies the response:

  - 2xx: decoded and returned
  - 401/403: terminal authorization failure, no retry
  - 404: terminal not-found, no retry
  - 409: conflict, not retried; association creation treats it as success
  - 429: retried with amplified backoff (double the generic schedule)
  - other 4xx/5xx and network faults: retried with generic backoff

Backoff is min(base * 2^attempt * multiplier, max) with base 1s, max 60s,
and 3 retries by default.

# Resolution and provisioning

Resolver maps stable external keys to remote identifiers: a bundle
identifier to an App, an app identifier to its most recently uploaded
Build. Provisioner drives the idempotent invite workflow: find-or-create
the tester, associate to the app, then to the latest build when it is ready
for testing; a build still processing yields a pending outcome rather than
a failure.
*/
package appstore
