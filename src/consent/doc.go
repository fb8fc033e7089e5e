// Package consent implements the permission record store of the consent
// family.
//
// A permission is a boolean attached to a (granter, grantee, kind) triple,
// stored at address.PermissionAddress(prefix, kind, granter, grantee). A
// missing record and a record with Granted == false mean the same thing: no
// access. Grants and revokes are idempotent; applying either to a record that
// already holds the target value performs no write.
//
// Client records are created once per principal, at address.ClientAddress,
// and creating the same client twice fails.
//
// ConsentState never buffers: every mutation goes straight to the
// store.Context it was built with, and atomicity is the context's business.
package consent
