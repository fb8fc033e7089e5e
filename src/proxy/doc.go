// Package proxy defines AppProxy: the interface between the ledger node and
// an application.
//
// The only implementation is InmemProxy, in the inmem subpackage, which uses
// native callback handlers (ProxyHandler) to run the application in the same
// process as the node. The consent processor is such an application.
package proxy
