package node

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"
	"time"

	"github.com/mosaicnetworks/consent/src/common"
	"github.com/mosaicnetworks/consent/src/ledger"
	"github.com/sirupsen/logrus"
)

// StateReader gives read access to committed application state.
// GetState returns a KeyNotFound StoreErr when nothing is stored.
type StateReader interface {
	GetState(address string) ([]byte, error)
}

// StateReply ...
type StateReply struct {
	Address string
	Data    []byte
	Found   bool
}

// StatsArgs ...
type StatsArgs struct{}

// SnapshotArgs ...
type SnapshotArgs struct{}

// LedgerService exposes a Node over net/rpc. It is registered under the name
// "Ledger".
type LedgerService struct {
	node    *Node
	state   StateReader
	timeout time.Duration
	logger  *logrus.Entry
}

// SubmitTx submits a transaction and waits for its receipt. If the block is
// not committed within the node's SubmitTimeout, a pending receipt is
// returned; the final one can be fetched later with GetReceipt.
func (l *LedgerService) SubmitTx(tx ledger.Transaction, receipt *ledger.Receipt) error {
	promise, err := l.node.SubmitTx(&tx)
	if err != nil {
		l.logger.WithError(err).Debug("Ledger.SubmitTx")
		return err
	}

	select {
	case resp := <-promise.RespCh:
		if resp.Err != nil {
			return resp.Err
		}
		*receipt = resp.Receipt
	case <-time.After(l.timeout):
		*receipt = ledger.NewPendingReceipt(tx.ID())
	}

	l.logger.WithFields(logrus.Fields{
		"tx":     tx.ID(),
		"status": receipt.Status,
	}).Debug("Ledger.SubmitTx")

	return nil
}

// GetReceipt ...
func (l *LedgerService) GetReceipt(id string, receipt *ledger.Receipt) error {
	r, err := l.node.GetReceipt(id)
	if err != nil {
		return err
	}
	*receipt = r
	return nil
}

// GetState reads committed state. A missing address is not an error: Found is
// false.
func (l *LedgerService) GetState(address string, reply *StateReply) error {
	reply.Address = address

	data, err := l.state.GetState(address)
	switch {
	case err == nil:
		reply.Data = data
		reply.Found = true
	case common.IsStore(err, common.KeyNotFound):
		reply.Found = false
	default:
		return err
	}

	return nil
}

// GetStats ...
func (l *LedgerService) GetStats(args StatsArgs, stats *map[string]string) error {
	*stats = l.node.GetStats()
	return nil
}

// GetSnapshot returns a snapshot of the state as of the last committed block.
func (l *LedgerService) GetSnapshot(args SnapshotArgs, snapshot *Snapshot) error {
	s, err := l.node.GetSnapshot()
	if err != nil {
		l.logger.WithError(err).Debug("Ledger.GetSnapshot")
		return err
	}

	*snapshot = *s

	l.logger.WithFields(logrus.Fields{
		"block": s.BlockIndex,
		"size":  len(s.App),
	}).Debug("Ledger.GetSnapshot")

	return nil
}

// RPCServer serves a LedgerService with the JSON-RPC codec over TCP.
type RPCServer struct {
	listener  net.Listener
	rpcServer *rpc.Server
	logger    *logrus.Entry

	lock   sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

// NewRPCServer registers the Ledger service and binds bindAddress.
func NewRPCServer(bindAddress string,
	node *Node,
	state StateReader,
	logger *logrus.Entry) (*RPCServer, error) {

	service := &LedgerService{
		node:    node,
		state:   state,
		timeout: node.conf.SubmitTimeout,
		logger:  logger,
	}

	rpcServer := rpc.NewServer()
	if err := rpcServer.RegisterName("Ledger", service); err != nil {
		return nil, err
	}

	l, err := net.Listen("tcp", bindAddress)
	if err != nil {
		return nil, err
	}

	return &RPCServer{
		listener:  l,
		rpcServer: rpcServer,
		logger:    logger,
		conns:     make(map[net.Conn]struct{}),
	}, nil
}

// Addr returns the address the server is listening on.
func (s *RPCServer) Addr() string {
	return s.listener.Addr().String()
}

// Serve accepts connections until Close is called.
func (s *RPCServer) Serve() error {
	s.logger.WithField("bind_address", s.Addr()).Debug("Serving Ledger RPC")

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.lock.Lock()
			closed := s.closed
			s.lock.Unlock()
			if closed {
				return nil
			}
			return err
		}

		s.lock.Lock()
		if s.closed {
			s.lock.Unlock()
			conn.Close()
			return nil
		}
		s.conns[conn] = struct{}{}
		s.wg.Add(1)
		s.lock.Unlock()

		go func() {
			defer s.wg.Done()
			s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(conn))
			s.lock.Lock()
			delete(s.conns, conn)
			s.lock.Unlock()
		}()
	}
}

// Close stops accepting connections, closes the open ones, and waits for
// their handlers to return.
func (s *RPCServer) Close() error {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return nil
	}
	s.closed = true
	err := s.listener.Close()
	for conn := range s.conns {
		conn.Close()
	}
	s.lock.Unlock()

	s.wg.Wait()

	return err
}
