// Package journal provides the narrow, domain-named facades over the vault:
// the timeline editor, the affirmation rotator, the feedback loop, the
// holographic mapper and the compression reinforcer.
//
// TimelineEditor and AffirmationRotator are purely in-memory. The other
// facades persist through a *vault.Vault and keep at most a short-lived
// in-memory mirror. None of the types are safe for concurrent use.
package journal
