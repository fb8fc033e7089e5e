package payload

import (
	"fmt"

	"github.com/mosaicnetworks/consent/src/address"
)

// ActionType is the payload discriminator.
type ActionType uint8

const (
	unset ActionType = iota
	// RevokeReadAccess ...
	RevokeReadAccess
	// GrantReadAccess ...
	GrantReadAccess
	// RevokeWriteAccess ...
	RevokeWriteAccess
	// GrantWriteAccess ...
	GrantWriteAccess
	// RevokeShareAccess ...
	RevokeShareAccess
	// GrantShareAccess ...
	GrantShareAccess
	// RevokeShareOfSharedAccess ...
	RevokeShareOfSharedAccess
	// GrantShareOfSharedAccess ...
	GrantShareOfSharedAccess
	// CreateClient ...
	CreateClient

	numActionTypes
)

var actionNames = [...]string{
	unset:                     "",
	RevokeReadAccess:          "revoke_read_ehr_access",
	GrantReadAccess:           "grant_read_ehr_access",
	RevokeWriteAccess:         "revoke_write_ehr_access",
	GrantWriteAccess:          "grant_write_ehr_access",
	RevokeShareAccess:         "revoke_share_ehr_access",
	GrantShareAccess:          "grant_share_ehr_access",
	RevokeShareOfSharedAccess: "revoke_share_shared_ehr_access",
	GrantShareOfSharedAccess:  "grant_share_shared_ehr_access",
	CreateClient:              "create_client",
}

// String ...
func (t ActionType) String() string {
	if t.Valid() {
		return actionNames[t]
	}
	return fmt.Sprintf("action(%d)", uint8(t))
}

// Valid reports whether t is one of the nine known actions.
func (t ActionType) Valid() bool {
	return t > unset && t < numActionTypes
}

// IsAccess reports whether t is a grant or a revoke.
func (t ActionType) IsAccess() bool {
	return t.Valid() && t != CreateClient
}

// IsGrant reports whether t grants a permission.
func (t ActionType) IsGrant() bool {
	return t.IsAccess() && t%2 == 0
}

// Kind returns the permission kind a grant or revoke acts on.
func (t ActionType) Kind() address.Kind {
	switch t {
	case RevokeReadAccess, GrantReadAccess:
		return address.Read
	case RevokeWriteAccess, GrantWriteAccess:
		return address.Write
	case RevokeShareAccess, GrantShareAccess:
		return address.Share
	case RevokeShareOfSharedAccess, GrantShareOfSharedAccess:
		return address.ShareOfShared
	default:
		return address.Client
	}
}

// AccessAction returns the grant (or revoke) action for a permission kind.
func AccessAction(kind address.Kind, grant bool) (ActionType, error) {
	if !kind.IsPermission() {
		return unset, fmt.Errorf("%s is not a permission kind", kind)
	}
	t := ActionType(2*uint8(kind) - 1)
	if grant {
		t++
	}
	return t, nil
}

// Access carries the operands of a grant or revoke: src gives dest the
// permission.
type Access struct {
	DestPkey string `codec:"dest_pkey" json:"dest_pkey"`
	SrcPkey  string `codec:"src_pkey" json:"src_pkey"`
}

// Client carries the operands of CreateClient.
type Client struct {
	PublicKey string `codec:"public_key" json:"public_key"`
	Name      string `codec:"name" json:"name"`
}

// Action is a decoded payload. Access is set for grant/revoke actions and
// Client for CreateClient, never both.
type Action struct {
	Type   ActionType
	Access *Access
	Client *Client
}

// NewAccessAction ...
func NewAccessAction(t ActionType, dest, src string) *Action {
	return &Action{
		Type:   t,
		Access: &Access{DestPkey: dest, SrcPkey: src},
	}
}

// NewCreateClientAction ...
func NewCreateClientAction(pkey, name string) *Action {
	return &Action{
		Type:   CreateClient,
		Client: &Client{PublicKey: pkey, Name: name},
	}
}
