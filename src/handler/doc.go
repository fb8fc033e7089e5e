// Package handler implements the consent transaction family.
//
// ConsentTransactionHandler is registered with a processor under the family
// name "consent", version "1.0", and claims the namespace derived from the
// family name. For each transaction it decodes the payload into an Action,
// dispatches the action to the matching ConsentState operation, and reports
// any failure as an InvalidTransaction. An invalid transaction never leaves
// partial writes behind: the processor runs Apply inside a store transaction
// that is discarded on error.
package handler
