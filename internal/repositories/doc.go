// Package repositories implements SQLite persistence for the CLI's provider credentials.
//
// [CredentialRepository] implements models.Repository for models.Credential and adds
// [CredentialRepository.Save], an upsert keyed by provider user id, and
// [CredentialRepository.Latest], which picks the account the CLI acts as.
//
// The gateway itself is stateless and never opens the database; only the CLI stores tokens,
// so repeated commands can skip the browser consent step.
package repositories
