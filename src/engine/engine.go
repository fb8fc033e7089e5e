package engine

import (
	"fmt"
	"os"
	"sync"

	"github.com/mosaicnetworks/consent/src/config"
	"github.com/mosaicnetworks/consent/src/handler"
	"github.com/mosaicnetworks/consent/src/node"
	"github.com/mosaicnetworks/consent/src/processor"
	"github.com/mosaicnetworks/consent/src/proxy/inmem"
	"github.com/mosaicnetworks/consent/src/store"
	"github.com/sirupsen/logrus"
)

// Engine is the actor that ties the ledger components together.
type Engine struct {
	Config    *config.Config
	Store     store.Store
	Processor *processor.Processor
	Proxy     *inmem.InmemProxy
	Node      *node.Node
	Server    *node.RPCServer

	shutdownOnce sync.Once
	logger       *logrus.Entry
}

// NewEngine ...
func NewEngine(conf *config.Config) *Engine {
	engine := &Engine{
		Config: conf,
		logger: conf.Logger(),
	}

	return engine
}

func (e *Engine) initStore() error {
	if !e.Config.Store {
		e.Store = store.NewInmemStore()

		e.logger.Debug("created new in-mem store")

		return nil
	}

	e.logger.WithField("path", e.Config.DatabaseDir).Debug("Attempting to load or create database")

	s, err := store.NewBadgerStore(e.Config.DatabaseDir)
	if err != nil {
		return err
	}

	e.logger.WithField("path", s.StorePath()).Debug("Opened database")

	e.Store = s

	return nil
}

func (e *Engine) initProcessor() error {
	e.Processor = processor.NewProcessor(e.Store, e.logger.WithField("component", "processor"))

	e.Processor.AddHandler(
		handler.NewConsentTransactionHandler(e.logger.WithField("component", "handler")),
	)

	e.Proxy = inmem.NewInmemProxy(e.Processor, e.logger.WithField("component", "proxy"))

	return nil
}

func (e *Engine) initNode() error {
	e.Node = node.NewNode(e.Config.NodeConfig(), e.Proxy)

	if e.Config.Restore == "" {
		return nil
	}

	data, err := os.ReadFile(e.Config.Restore)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %s", err)
	}

	snapshot := new(node.Snapshot)
	if err := snapshot.Unmarshal(data); err != nil {
		return fmt.Errorf("failed to decode snapshot %s: %s", e.Config.Restore, err)
	}

	return e.Node.Restore(snapshot)
}

func (e *Engine) initServer() error {
	server, err := node.NewRPCServer(
		e.Config.BindAddr,
		e.Node,
		e.Processor,
		e.logger.WithField("component", "rpc"),
	)
	if err != nil {
		return fmt.Errorf("failed to start Ledger RPC: %s", err)
	}

	e.Server = server

	return nil
}

// Init sets up the store, processor, node and RPC server. On error, whatever
// was already opened is closed again.
func (e *Engine) Init() error {
	if err := e.initStore(); err != nil {
		return err
	}

	if err := e.initProcessor(); err != nil {
		e.Store.Close()
		return err
	}

	if err := e.initNode(); err != nil {
		e.Store.Close()
		return err
	}

	if err := e.initServer(); err != nil {
		e.Store.Close()
		return err
	}

	return nil
}

// RunAsync starts the node in the background and serves RPC requests.
// Serve errors are returned on the channel.
func (e *Engine) RunAsync() <-chan error {
	e.Node.RunAsync()

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Server.Serve()
	}()

	return errCh
}

// Run starts the node and serves RPC requests until Shutdown is called.
func (e *Engine) Run() error {
	return <-e.RunAsync()
}

// Addr returns the address the RPC server is bound to.
func (e *Engine) Addr() string {
	return e.Server.Addr()
}

// Shutdown stops the RPC server, then the node, then closes the store.
func (e *Engine) Shutdown() {
	e.shutdownOnce.Do(e.shutdown)
}

func (e *Engine) shutdown() {
	e.logger.Debug("Shutdown")

	if e.Server != nil {
		e.Server.Close()
	}

	if e.Node != nil {
		e.Node.Shutdown()
	}

	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			e.logger.WithError(err).Warn("Closing store")
		}
	}
}
