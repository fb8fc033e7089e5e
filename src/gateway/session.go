package gateway

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"
	"time"

	"github.com/mosaicnetworks/consent/src/address"
	"github.com/mosaicnetworks/consent/src/common"
	"github.com/mosaicnetworks/consent/src/consent"
	"github.com/mosaicnetworks/consent/src/crypto/keys"
	"github.com/mosaicnetworks/consent/src/handler"
	"github.com/mosaicnetworks/consent/src/ledger"
	"github.com/mosaicnetworks/consent/src/node"
	"github.com/mosaicnetworks/consent/src/payload"
	"github.com/sirupsen/logrus"
)

// DefaultPollInterval is how often Submit asks for the receipt of a pending
// transaction.
const DefaultPollInterval = 50 * time.Millisecond

// LedgerClient is the part of a Session that the Service uses.
type LedgerClient interface {
	Submit(ctx context.Context, action *payload.Action) (*ledger.Receipt, error)
	GetState(ctx context.Context, address string) ([]byte, error)
	Stats(ctx context.Context) (map[string]string, error)
}

// Session signs and submits consent transactions to a ledger node.
type Session struct {
	ledgerAddr   string
	key          *ecdsa.PrivateKey
	timeout      time.Duration
	pollInterval time.Duration
	prefix       string
	logger       *logrus.Entry

	lock   sync.Mutex
	client *rpc.Client
}

// NewSession ...
func NewSession(ledgerAddr string,
	key *ecdsa.PrivateKey,
	timeout time.Duration,
	logger *logrus.Entry) *Session {

	return &Session{
		ledgerAddr:   ledgerAddr,
		key:          key,
		timeout:      timeout,
		pollInterval: DefaultPollInterval,
		prefix:       address.Namespace(handler.FamilyName),
		logger:       logger,
	}
}

// Open dials the ledger node. Calls made on a Session that is not open, or
// whose connection dropped, dial again.
func (s *Session) Open() error {
	_, err := s.getClient()
	return err
}

// Close ...
func (s *Session) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.client == nil {
		return nil
	}

	err := s.client.Close()
	s.client = nil

	return err
}

// Signer returns the public key transactions are signed with.
func (s *Session) Signer() string {
	return keys.PublicKeyHex(&s.key.PublicKey)
}

// Submit signs action and waits for its receipt. An invalid transaction is
// not an error: its receipt has status Invalid. Errors are payload errors for
// actions that cannot be encoded, *TimeoutError, and *LedgerError.
func (s *Session) Submit(ctx context.Context, action *payload.Action) (*ledger.Receipt, error) {
	raw, err := payload.Encode(action)
	if err != nil {
		return nil, err
	}

	tx, err := ledger.NewTransaction(handler.FamilyName, handler.FamilyVersion, raw, s.key)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	logger := s.logger.WithFields(logrus.Fields{
		"tx":     tx.ID(),
		"action": action.Type,
	})

	var receipt ledger.Receipt
	if err := s.call(ctx, "Ledger.SubmitTx", *tx, &receipt); err != nil {
		logger.WithError(err).Debug("Submit")
		return nil, err
	}

	for receipt.IsPending() {
		select {
		case <-ctx.Done():
			return nil, &TimeoutError{TransactionID: tx.ID(), Err: ctx.Err()}
		case <-time.After(s.pollInterval):
		}

		var next ledger.Receipt
		if err := s.call(ctx, "Ledger.GetReceipt", tx.ID(), &next); err != nil {
			if te, ok := err.(*TimeoutError); ok {
				te.TransactionID = tx.ID()
			}
			return nil, err
		}
		receipt = next
	}

	logger.WithField("status", receipt.Status).Debug("Submit")

	return &receipt, nil
}

// GetState returns the committed bytes at an address, or a KeyNotFound
// StoreErr.
func (s *Session) GetState(ctx context.Context, addr string) ([]byte, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var reply node.StateReply
	if err := s.call(ctx, "Ledger.GetState", addr, &reply); err != nil {
		return nil, err
	}

	if !reply.Found {
		return nil, common.NewStoreErr("State", common.KeyNotFound, addr)
	}

	return reply.Data, nil
}

// Stats ...
func (s *Session) Stats(ctx context.Context) (map[string]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var stats map[string]string
	if err := s.call(ctx, "Ledger.GetStats", node.StatsArgs{}, &stats); err != nil {
		return nil, err
	}

	return stats, nil
}

// Snapshot fetches a snapshot of the ledger state as of its last block.
func (s *Session) Snapshot(ctx context.Context) (*node.Snapshot, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	snapshot := new(node.Snapshot)
	if err := s.call(ctx, "Ledger.GetSnapshot", node.SnapshotArgs{}, snapshot); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// ConsentState returns a read-only view of committed consent state through
// any LedgerClient.
func ConsentState(ctx context.Context, client LedgerClient) *consent.ConsentState {
	return consent.NewConsentState(&remoteContext{ctx: ctx, client: client}, address.Namespace(handler.FamilyName))
}

func (s *Session) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Session) getClient() (*rpc.Client, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.client == nil {
		dialTimeout := s.timeout
		if dialTimeout <= 0 {
			dialTimeout = 5 * time.Second
		}

		conn, err := net.DialTimeout("tcp", s.ledgerAddr, dialTimeout)
		if err != nil {
			return nil, err
		}

		s.client = jsonrpc.NewClient(conn)
	}

	return s.client, nil
}

// drop forgets a client whose connection is gone, so the next call dials.
func (s *Session) drop(client *rpc.Client) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.client == client {
		s.client.Close()
		s.client = nil
	}
}

func (s *Session) call(ctx context.Context, method string, args interface{}, reply interface{}) error {
	client, err := s.getClient()
	if err != nil {
		return &LedgerError{Method: method, Err: err}
	}

	call := client.Go(method, args, reply, make(chan *rpc.Call, 1))

	select {
	case <-call.Done:
		if call.Error != nil {
			if _, ok := call.Error.(rpc.ServerError); !ok {
				s.drop(client)
			}
			return &LedgerError{Method: method, Err: call.Error}
		}
		return nil
	case <-ctx.Done():
		return &TimeoutError{Err: ctx.Err()}
	}
}

// remoteContext is a read-only store.Context backed by a LedgerClient.
type remoteContext struct {
	ctx    context.Context
	client LedgerClient
}

func (c *remoteContext) GetState(addr string) ([]byte, error) {
	return c.client.GetState(c.ctx, addr)
}

func (c *remoteContext) SetState(addr string, data []byte) error {
	return fmt.Errorf("write to %s through the gateway", addr)
}
