package provider

import (
	"github.com/mrz1836/tether/internal/walletrpc"
	tethererr "github.com/mrz1836/tether/pkg/errors"
)

// Registry maps each provider kind to its connector.
type Registry struct {
	connectors map[Kind]Connector
}

// NewRegistry creates a registry from connectors. Connectors for kinds outside
// the known set are ignored.
func NewRegistry(connectors ...Connector) *Registry {
	r := &Registry{connectors: make(map[Kind]Connector, len(connectors))}
	for _, c := range connectors {
		if c.Kind().Valid() {
			r.connectors[c.Kind()] = c
		}
	}
	return r
}

// Options configures the default registry.
type Options struct {
	Endpoints map[Kind]string
	RPC       *walletrpc.Options
	Pairing   PairingFunc
	Dial      DialFunc
}

// NewDefaultRegistry creates an RPCConnector for every kind. Kinds without an
// endpoint resolve but fail to activate.
func NewDefaultRegistry(opts Options) *Registry {
	connectors := make([]Connector, 0, len(Kinds()))
	for _, k := range Kinds() {
		connectors = append(connectors, NewRPCConnector(k, ConnectorOptions{
			Endpoint: opts.Endpoints[k],
			Dial:     opts.Dial,
			RPC:      opts.RPC,
			Pairing:  opts.Pairing,
		}))
	}
	return NewRegistry(connectors...)
}

// Resolve returns the connector for kind.
func (r *Registry) Resolve(kind Kind) (Connector, error) {
	c, ok := r.connectors[kind]
	if !ok {
		return nil, tethererr.WithDetails(tethererr.ErrUnknownProviderKind, map[string]string{"kind": string(kind)})
	}
	return c, nil
}

// Kinds returns the registered kinds in display order.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, 0, len(r.connectors))
	for _, k := range Kinds() {
		if _, ok := r.connectors[k]; ok {
			out = append(out, k)
		}
	}
	return out
}
