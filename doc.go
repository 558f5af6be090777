// Package auth provides the account lifecycle for the vIAbilize backend:
// email/password signup gated by a one-time code, bearer token issuance and
// validation, a cached session resolver and a per-user activity log.
//
// Account lifecycle:
//   - OTPManager.Issue creates an unverified account with a six digit code
//     and an expiry. The code is delivered by a Notifier after the account
//     commits, so a mail outage never rolls back a signup.
//   - OTPManager.Resend replaces the outstanding code of an unverified
//     account. Only the most recent code verifies.
//   - OTPManager.Verify flips the account to verified and active once and
//     triggers a welcome message on that transition only.
//
// Sessions:
//   - Auther.Login checks credentials (existence, password, verification in
//     that order) and signs an access token carrying the user id as subject.
//   - SessionResolver turns a bearer token into a *User snapshot. Snapshots
//     are cached by subject in a bounded expiring LRU and evicted on logout
//     or when the account changes.
//
// Activity:
//   - ActivityLogger persists labelled events ("login", "verify-otp") on the
//     TaskRunner so request latency and request outcome never depend on the
//     log write.
package auth
