package consent

import (
	"fmt"

	"github.com/mosaicnetworks/consent/src/address"
	cm "github.com/mosaicnetworks/consent/src/common"
	"github.com/mosaicnetworks/consent/src/store"
)

// ConsentState reads and writes consent records through a store.Context.
type ConsentState struct {
	ctx    store.Context
	prefix string
}

// NewConsentState ...
func NewConsentState(ctx store.Context, prefix string) *ConsentState {
	return &ConsentState{
		ctx:    ctx,
		prefix: prefix,
	}
}

// GrantReadEHRAccess lets dest read src's records.
func (s *ConsentState) GrantReadEHRAccess(dest, src string) error {
	return s.setPermission(address.Read, dest, src, true)
}

// RevokeReadEHRAccess ...
func (s *ConsentState) RevokeReadEHRAccess(dest, src string) error {
	return s.setPermission(address.Read, dest, src, false)
}

// GrantWriteEHRAccess lets dest write src's records.
func (s *ConsentState) GrantWriteEHRAccess(dest, src string) error {
	return s.setPermission(address.Write, dest, src, true)
}

// RevokeWriteEHRAccess ...
func (s *ConsentState) RevokeWriteEHRAccess(dest, src string) error {
	return s.setPermission(address.Write, dest, src, false)
}

// GrantShareEHRAccess lets dest share src's records.
func (s *ConsentState) GrantShareEHRAccess(dest, src string) error {
	return s.setPermission(address.Share, dest, src, true)
}

// RevokeShareEHRAccess ...
func (s *ConsentState) RevokeShareEHRAccess(dest, src string) error {
	return s.setPermission(address.Share, dest, src, false)
}

// GrantShareSharedEHRAccess lets dest re-share records of src that were
// shared with it.
func (s *ConsentState) GrantShareSharedEHRAccess(dest, src string) error {
	return s.setPermission(address.ShareOfShared, dest, src, true)
}

// RevokeShareSharedEHRAccess ...
func (s *ConsentState) RevokeShareSharedEHRAccess(dest, src string) error {
	return s.setPermission(address.ShareOfShared, dest, src, false)
}

// HasAccess reports whether src has granted kind to dest. A missing record
// is no access.
func (s *ConsentState) HasAccess(kind address.Kind, dest, src string) (bool, error) {
	rec, err := s.getPermission(kind, dest, src)
	if err != nil {
		return false, err
	}
	return rec.Granted, nil
}

// CreateClient stores a new client record. It fails if the principal already
// has one.
func (s *ConsentState) CreateClient(client ClientRecord) error {
	addr := address.ClientAddress(s.prefix, client.PublicKey)

	_, err := s.ctx.GetState(addr)
	switch {
	case err == nil:
		return stateErr("create client", addr,
			cm.NewStoreErr("Client", cm.KeyAlreadyExists, client.PublicKey))
	case !cm.IsStore(err, cm.KeyNotFound):
		return stateErr("get client", addr, err)
	}

	data, err := client.Marshal()
	if err != nil {
		return stateErr("encode client", addr, err)
	}

	if err := s.ctx.SetState(addr, data); err != nil {
		return stateErr("set client", addr, err)
	}

	return nil
}

// GetClient returns the client record of a principal. A missing client is a
// StateError wrapping a KeyNotFound StoreErr.
func (s *ConsentState) GetClient(pkey string) (*ClientRecord, error) {
	addr := address.ClientAddress(s.prefix, pkey)

	data, err := s.ctx.GetState(addr)
	if err != nil {
		return nil, stateErr("get client", addr, err)
	}

	client := new(ClientRecord)
	if err := client.Unmarshal(data); err != nil {
		return nil, stateErr("decode client", addr, err)
	}

	return client, nil
}

// getPermission returns the record for the triple, or an empty one when
// nothing is stored yet.
func (s *ConsentState) getPermission(kind address.Kind, dest, src string) (*PermissionRecord, error) {
	addr := address.PermissionAddress(s.prefix, kind, src, dest)

	rec := &PermissionRecord{
		Granter: src,
		Grantee: dest,
		Kind:    kind,
	}

	data, err := s.ctx.GetState(addr)
	if err != nil {
		if cm.IsStore(err, cm.KeyNotFound) {
			return rec, nil
		}
		return nil, stateErr("get permission", addr, err)
	}

	if err := rec.Unmarshal(data); err != nil {
		return nil, stateErr("decode permission", addr, err)
	}

	if rec.Granter != src || rec.Grantee != dest || rec.Kind != kind {
		return nil, stateErr("decode permission", addr,
			fmt.Errorf("record is for %s %s->%s", rec.Kind, rec.Granter, rec.Grantee))
	}

	return rec, nil
}

func (s *ConsentState) setPermission(kind address.Kind, dest, src string, granted bool) error {
	rec, err := s.getPermission(kind, dest, src)
	if err != nil {
		return err
	}

	if rec.Granted == granted {
		return nil
	}

	rec.Granted = granted

	addr := address.PermissionAddress(s.prefix, kind, src, dest)

	data, err := rec.Marshal()
	if err != nil {
		return stateErr("encode permission", addr, err)
	}

	if err := s.ctx.SetState(addr, data); err != nil {
		return stateErr("set permission", addr, err)
	}

	return nil
}
