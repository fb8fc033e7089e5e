package handler

import (
	"fmt"

	"github.com/mosaicnetworks/consent/src/address"
	"github.com/mosaicnetworks/consent/src/consent"
	"github.com/mosaicnetworks/consent/src/ledger"
	"github.com/mosaicnetworks/consent/src/payload"
	"github.com/mosaicnetworks/consent/src/store"
	"github.com/sirupsen/logrus"
)

const (
	// FamilyName ...
	FamilyName = "consent"
	// FamilyVersion ...
	FamilyVersion = "1.0"
)

// ConsentTransactionHandler applies consent payloads to state.
type ConsentTransactionHandler struct {
	prefix string
	logger *logrus.Entry
}

// NewConsentTransactionHandler returns a handler for the consent family. If
// logger is nil, a new one is created.
func NewConsentTransactionHandler(logger *logrus.Entry) *ConsentTransactionHandler {
	if logger == nil {
		l := logrus.New()
		l.Level = logrus.DebugLevel
		logger = logrus.NewEntry(l)
	}

	return &ConsentTransactionHandler{
		prefix: address.Namespace(FamilyName),
		logger: logger.WithField("family", FamilyName),
	}
}

// FamilyName ...
func (h *ConsentTransactionHandler) FamilyName() string {
	return FamilyName
}

// FamilyVersions ...
func (h *ConsentTransactionHandler) FamilyVersions() []string {
	return []string{FamilyVersion}
}

// Namespaces ...
func (h *ConsentTransactionHandler) Namespaces() []string {
	return []string{h.prefix}
}

// Apply decodes tx's payload and applies it through ctx. Every error it
// returns is an *InvalidTransaction.
func (h *ConsentTransactionHandler) Apply(tx *ledger.Transaction, ctx store.Context) error {
	action, err := payload.Decode(tx.Payload)
	if err != nil {
		h.logger.WithError(err).Debug("Decode payload")
		return invalid(err)
	}

	fields := logrus.Fields{
		"tx":     tx.ID(),
		"signer": tx.Header.SignerPublicKey,
		"action": action.Type,
	}
	if action.Type.IsAccess() {
		fields["kind"] = action.Type.Kind()
		fields["grant"] = action.Type.IsGrant()
	}
	h.logger.WithFields(fields).Debug("Apply")

	if err := h.dispatch(action, consent.NewConsentState(ctx, h.prefix)); err != nil {
		h.logger.WithError(err).WithField("action", action.Type).Debug("Apply failed")
		return invalid(err)
	}

	return nil
}

func (h *ConsentTransactionHandler) dispatch(action *payload.Action, state *consent.ConsentState) error {
	switch action.Type {
	case payload.RevokeReadAccess:
		return state.RevokeReadEHRAccess(action.Access.DestPkey, action.Access.SrcPkey)
	case payload.GrantReadAccess:
		return state.GrantReadEHRAccess(action.Access.DestPkey, action.Access.SrcPkey)
	case payload.RevokeWriteAccess:
		return state.RevokeWriteEHRAccess(action.Access.DestPkey, action.Access.SrcPkey)
	case payload.GrantWriteAccess:
		return state.GrantWriteEHRAccess(action.Access.DestPkey, action.Access.SrcPkey)
	case payload.RevokeShareAccess:
		return state.RevokeShareEHRAccess(action.Access.DestPkey, action.Access.SrcPkey)
	case payload.GrantShareAccess:
		return state.GrantShareEHRAccess(action.Access.DestPkey, action.Access.SrcPkey)
	case payload.RevokeShareOfSharedAccess:
		return state.RevokeShareSharedEHRAccess(action.Access.DestPkey, action.Access.SrcPkey)
	case payload.GrantShareOfSharedAccess:
		return state.GrantShareSharedEHRAccess(action.Access.DestPkey, action.Access.SrcPkey)
	case payload.CreateClient:
		return state.CreateClient(consent.ClientRecord{
			PublicKey: action.Client.PublicKey,
			Name:      action.Client.Name,
		})
	default:
		return &payload.UnknownActionError{Action: uint8(action.Type)}
	}
}

// String ...
func (h *ConsentTransactionHandler) String() string {
	return fmt.Sprintf("%s/%s", FamilyName, FamilyVersion)
}
