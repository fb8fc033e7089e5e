package processor

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"
	"testing"

	"github.com/mosaicnetworks/consent/src/address"
	"github.com/mosaicnetworks/consent/src/common"
	"github.com/mosaicnetworks/consent/src/consent"
	"github.com/mosaicnetworks/consent/src/crypto/keys"
	"github.com/mosaicnetworks/consent/src/handler"
	"github.com/mosaicnetworks/consent/src/ledger"
	"github.com/mosaicnetworks/consent/src/payload"
	"github.com/mosaicnetworks/consent/src/store"
	"github.com/stretchr/testify/require"
)

var consentPrefix = address.Namespace(handler.FamilyName)

// rogueHandler writes one key inside its namespace and one outside.
type rogueHandler struct {
	prefix string
}

func (h *rogueHandler) FamilyName() string       { return "rogue" }
func (h *rogueHandler) FamilyVersions() []string { return []string{"1.0"} }
func (h *rogueHandler) Namespaces() []string     { return []string{h.prefix} }

func (h *rogueHandler) Apply(tx *ledger.Transaction, ctx store.Context) error {
	if err := ctx.SetState(address.Make(h.prefix, address.Client, "mine", ""), tx.Payload); err != nil {
		return err
	}
	return ctx.SetState(address.ClientAddress(consentPrefix, "theirs"), tx.Payload)
}

func newTestProcessor(t *testing.T, s store.Store) *Processor {
	p := NewProcessor(s, common.NewTestEntry(t, common.TestLogLevel))
	p.AddHandler(handler.NewConsentTransactionHandler(common.NewTestEntry(t, common.TestLogLevel)))
	p.AddHandler(&rogueHandler{prefix: address.Namespace("rogue")})
	return p
}

func newKey(t *testing.T) *ecdsa.PrivateKey {
	key, err := keys.GenerateECDSAKey()
	require.NoError(t, err)
	return key
}

func pub(key *ecdsa.PrivateKey) string {
	return keys.PublicKeyHex(&key.PublicKey)
}

func consentTx(t *testing.T, key *ecdsa.PrivateKey, a *payload.Action) (*ledger.Transaction, []byte) {
	raw, err := payload.Encode(a)
	require.NoError(t, err)
	return familyTx(t, key, handler.FamilyName, handler.FamilyVersion, raw)
}

func familyTx(t *testing.T, key *ecdsa.PrivateKey, family, version string, data []byte) (*ledger.Transaction, []byte) {
	tx, err := ledger.NewTransaction(family, version, data, key)
	require.NoError(t, err)
	raw, err := tx.Marshal()
	require.NoError(t, err)
	return tx, raw
}

func hasRead(t *testing.T, p *Processor, dest, src string) bool {
	var ok bool
	err := p.Query(func(ctx store.Context) error {
		var err error
		ok, err = consent.NewConsentState(ctx, consentPrefix).HasAccess(address.Read, dest, src)
		return err
	})
	require.NoError(t, err)
	return ok
}

func TestCommitReceipts(t *testing.T) {
	p := newTestProcessor(t, store.NewInmemStore())

	patient, doctor := newKey(t), newKey(t)

	createTx, createRaw := consentTx(t, patient, payload.NewCreateClientAction(pub(patient), "patient"))
	grantTx, grantRaw := consentTx(t, patient, payload.NewAccessAction(payload.GrantReadAccess, pub(doctor), pub(patient)))
	dupTx, dupRaw := consentTx(t, doctor, payload.NewCreateClientAction(pub(patient), "impostor"))

	forged, _ := consentTx(t, doctor, payload.NewAccessAction(payload.GrantWriteAccess, pub(doctor), pub(patient)))
	forged.Header.SignerPublicKey = pub(patient)
	forgedRaw, err := forged.Marshal()
	require.NoError(t, err)

	unknownTx, unknownRaw := familyTx(t, patient, "intkey", "1.0", []byte("inc"))

	block := ledger.NewBlock(3, [][]byte{createRaw, grantRaw, dupRaw, forgedRaw, unknownRaw, []byte("garbage")})

	resp, err := p.CommitHandler(*block)
	require.NoError(t, err)
	require.Len(t, resp.Receipts, 6)

	expected := []struct {
		id     string
		status ledger.ReceiptStatus
	}{
		{createTx.ID(), ledger.Committed},
		{grantTx.ID(), ledger.Committed},
		{dupTx.ID(), ledger.Invalid},
		{forged.ID(), ledger.Invalid},
		{unknownTx.ID(), ledger.Invalid},
		{"", ledger.Invalid},
	}

	for i, e := range expected {
		r := resp.Receipts[i]
		require.Equal(t, e.id, r.TransactionID, "receipt %d", i)
		require.Equal(t, e.status, r.Status, "receipt %d: %s", i, r.Message)
		require.Equal(t, 3, r.BlockIndex)
		if e.status == ledger.Invalid {
			require.NotEmpty(t, r.Message, "receipt %d", i)
		}
	}

	require.Contains(t, resp.Receipts[2].Message, "Key Already Exists")
	require.Contains(t, resp.Receipts[4].Message, "intkey/1.0")

	require.True(t, hasRead(t, p, pub(doctor), pub(patient)))

	var client *consent.ClientRecord
	require.NoError(t, p.Query(func(ctx store.Context) error {
		var err error
		client, err = consent.NewConsentState(ctx, consentPrefix).GetClient(pub(patient))
		return err
	}))
	require.Equal(t, "patient", client.Name)
}

func TestNamespaceIsolation(t *testing.T) {
	s := store.NewInmemStore()
	p := newTestProcessor(t, s)

	_, raw := familyTx(t, newKey(t), "rogue", "1.0", []byte("data"))

	resp, err := p.CommitHandler(*ledger.NewBlock(0, [][]byte{raw}))
	require.NoError(t, err)
	require.Equal(t, ledger.Invalid, resp.Receipts[0].Status)
	require.Contains(t, resp.Receipts[0].Message, "Out Of Namespace")

	// the in-namespace write was discarded with the rest of the transaction
	require.Equal(t, 0, s.Len())

	_, err = p.GetState(address.Make(address.Namespace("rogue"), address.Client, "mine", ""))
	require.True(t, common.IsStore(err, common.KeyNotFound), "%v", err)
}

func TestStateHash(t *testing.T) {
	p1 := newTestProcessor(t, store.NewInmemStore())
	p2 := newTestProcessor(t, store.NewInmemStore())

	patient, doctor := newKey(t), newKey(t)

	_, grant := consentTx(t, patient, payload.NewAccessAction(payload.GrantReadAccess, pub(doctor), pub(patient)))
	_, revoke := consentTx(t, patient, payload.NewAccessAction(payload.RevokeReadAccess, pub(doctor), pub(patient)))

	blocks := []*ledger.Block{
		ledger.NewBlock(0, [][]byte{grant}),
		ledger.NewBlock(1, [][]byte{[]byte("garbage")}),
		ledger.NewBlock(2, [][]byte{revoke}),
	}

	var hashes [][]byte
	for _, b := range blocks {
		r1, err := p1.CommitHandler(*b)
		require.NoError(t, err)
		r2, err := p2.CommitHandler(*b)
		require.NoError(t, err)
		require.Equal(t, r1.StateHash, r2.StateHash, "block %d", b.Index())
		hashes = append(hashes, r1.StateHash)
	}

	require.NotEmpty(t, hashes[0])
	require.Equal(t, hashes[0], hashes[1], "invalid transactions should not move the state hash")
	require.NotEqual(t, hashes[1], hashes[2])
	require.Equal(t, hashes[2], p1.StateHash())

	require.False(t, hasRead(t, p1, pub(doctor), pub(patient)))
}

func TestSnapshotRestore(t *testing.T) {
	p := newTestProcessor(t, store.NewInmemStore())

	patient, doctor := newKey(t), newKey(t)
	_, grant := consentTx(t, patient, payload.NewAccessAction(payload.GrantReadAccess, pub(doctor), pub(patient)))

	resp, err := p.CommitHandler(*ledger.NewBlock(0, [][]byte{grant}))
	require.NoError(t, err)

	snapshot, err := p.SnapshotHandler(0)
	require.NoError(t, err)

	_, err = p.SnapshotHandler(1)
	require.Error(t, err)

	dir := t.TempDir()
	bs, err := store.NewBadgerStore(dir)
	require.NoError(t, err)
	defer bs.Close()

	restored := newTestProcessor(t, bs)
	stateHash, err := restored.RestoreHandler(snapshot)
	require.NoError(t, err)

	require.True(t, bytes.Equal(resp.StateHash, stateHash))
	require.True(t, hasRead(t, restored, pub(doctor), pub(patient)))
}

func TestSnapshotLastBlockOnly(t *testing.T) {
	p := newTestProcessor(t, store.NewInmemStore())

	empty, err := p.SnapshotHandler(-1)
	require.NoError(t, err)

	patient := newKey(t)
	_, create := consentTx(t, patient, payload.NewCreateClientAction(pub(patient), "patient"))

	for i := 0; i < 3; i++ {
		txs := [][]byte{}
		if i == 1 {
			txs = append(txs, create)
		}
		_, err := p.CommitHandler(*ledger.NewBlock(i, txs))
		require.NoError(t, err)
	}

	for _, i := range []int{-1, 0, 1, 3} {
		_, err := p.SnapshotHandler(i)
		require.Error(t, err, "block %d is not the last block", i)
	}

	snapshot, err := p.SnapshotHandler(2)
	require.NoError(t, err)

	restored := newTestProcessor(t, store.NewInmemStore())
	_, err = restored.RestoreHandler(snapshot)
	require.NoError(t, err)
	require.Equal(t, p.StateHash(), restored.StateHash())

	_, err = restored.SnapshotHandler(2)
	require.NoError(t, err, "a restored processor resumes at the snapshot block")

	// restoring the empty snapshot wipes the state again
	_, err = restored.RestoreHandler(empty)
	require.NoError(t, err)
	_, err = restored.GetState(address.ClientAddress(consentPrefix, pub(patient)))
	require.True(t, common.IsStore(err, common.KeyNotFound), "%v", err)
	require.Empty(t, restored.StateHash())
}

func TestStoreFailureAbortsBlock(t *testing.T) {
	s := store.NewInmemStore()
	p := newTestProcessor(t, s)

	require.NoError(t, s.Close())

	patient := newKey(t)
	_, raw := consentTx(t, patient, payload.NewCreateClientAction(pub(patient), "patient"))

	_, err := p.CommitHandler(*ledger.NewBlock(0, [][]byte{raw}))
	require.Error(t, err)
	require.True(t, common.IsStore(err, common.Closed), "%v", err)
}

// poisonedStore fails the commit of any Update that wrote to the poisoned
// address.
type poisonedStore struct {
	*store.InmemStore
	poison string
}

type watchContext struct {
	store.Context
	poison string
	hit    bool
}

func (c *watchContext) SetState(addr string, data []byte) error {
	if addr == c.poison {
		c.hit = true
	}
	return c.Context.SetState(addr, data)
}

func (s *poisonedStore) Update(fn func(store.Context) error) error {
	return s.InmemStore.Update(func(ctx store.Context) error {
		w := &watchContext{Context: ctx, poison: s.poison}
		if err := fn(w); err != nil {
			return err
		}
		if w.hit {
			return fmt.Errorf("disk full writing %s", s.poison)
		}
		return nil
	})
}

func TestStoreFailureMidBlockPersistsNothing(t *testing.T) {
	a, b := newKey(t), newKey(t)

	s := &poisonedStore{
		InmemStore: store.NewInmemStore(),
		poison:     address.ClientAddress(consentPrefix, pub(b)),
	}
	p := newTestProcessor(t, s)

	_, createA := consentTx(t, a, payload.NewCreateClientAction(pub(a), "a"))
	_, createB := consentTx(t, b, payload.NewCreateClientAction(pub(b), "b"))
	block := ledger.NewBlock(0, [][]byte{createA, createB})

	_, err := p.CommitHandler(*block)
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk full")

	_, err = p.GetState(address.ClientAddress(consentPrefix, pub(a)))
	require.True(t, common.IsStore(err, common.KeyNotFound), "first transaction leaked: %v", err)
	require.Equal(t, 0, s.Len())
	require.Empty(t, p.StateHash())

	_, err = p.SnapshotHandler(0)
	require.Error(t, err, "a failed block is not the last block")

	// the same block commits cleanly once the store recovers
	s.poison = ""
	resp, err := p.CommitHandler(*block)
	require.NoError(t, err)
	require.Len(t, resp.Receipts, 2)
	for i, r := range resp.Receipts {
		require.True(t, r.IsCommitted(), "receipt %d: %s", i, r.Message)
	}
	require.Equal(t, 2, s.Len())
	require.Equal(t, resp.StateHash, p.StateHash())
}
