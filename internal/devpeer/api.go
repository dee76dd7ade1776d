package devpeer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/mrz1836/tether/internal/networks"
	"github.com/mrz1836/tether/internal/walletrpc"
)

// codeInvalidParams is the JSON-RPC invalid params code.
const codeInvalidParams = -32602

// rpcError is an error reply carrying a wallet error code.
type rpcError struct {
	code int
	msg  string
}

func (e *rpcError) Error() string  { return e.msg }
func (e *rpcError) ErrorCode() int { return e.code }

func userRejected(what string) error {
	return &rpcError{code: walletrpc.CodeUserRejected, msg: "User rejected " + what}
}

func invalidParams(format string, args ...any) error {
	return &rpcError{code: codeInvalidParams, msg: fmt.Sprintf(format, args...)}
}

// message is a personal_sign payload. A 0x-prefixed hex string is decoded;
// anything else is taken as UTF-8 text.
type message []byte

func (m *message) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.HasPrefix(s, "0x") {
		if b, err := hexutil.Decode(s); err == nil {
			*m = b
			return nil
		}
	}
	*m = []byte(s)
	return nil
}

// ethAPI serves the eth_ namespace.
type ethAPI struct{ p *Peer }

// RequestAccounts returns the peer account. The development peer never prompts.
func (api *ethAPI) RequestAccounts() []common.Address {
	api.p.debug("eth_requestAccounts -> %s", api.p.address.Hex())
	return []common.Address{api.p.address}
}

// Accounts returns the peer account.
func (api *ethAPI) Accounts() []common.Address {
	return []common.Address{api.p.address}
}

// ChainId returns the current chain.
func (api *ethAPI) ChainId() hexutil.Uint64 { //nolint:revive,staticcheck // RPC method name is eth_chainId
	return hexutil.Uint64(api.p.ChainID())
}

// walletAPI serves the wallet_ namespace.
type walletAPI struct{ p *Peer }

type switchChainParams struct {
	ChainID string `json:"chainId"`
}

// SwitchEthereumChain moves to a known chain, or answers 4902.
func (api *walletAPI) SwitchEthereumChain(params switchChainParams) error {
	id, err := hexutil.DecodeUint64(params.ChainID)
	if err != nil {
		return invalidParams("invalid chainId %q", params.ChainID)
	}

	p := api.p
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.known[id] {
		p.debug("wallet_switchEthereumChain %s: unrecognized", params.ChainID)
		return &rpcError{
			code: walletrpc.CodeUnrecognizedChain,
			msg:  fmt.Sprintf("Unrecognized chain ID %q. Try adding the chain using wallet_addEthereumChain first.", params.ChainID),
		}
	}
	p.chainID = id
	p.debug("wallet_switchEthereumChain %s: switched", params.ChainID)
	return nil
}

// AddEthereumChain registers a chain. It does not switch to it.
func (api *walletAPI) AddEthereumChain(desc networks.Descriptor) error {
	p := api.p
	if p.cfg.RejectAdd {
		return userRejected("the request.")
	}

	id, err := hexutil.DecodeUint64(desc.ChainID)
	if err != nil {
		return invalidParams("invalid chainId %q", desc.ChainID)
	}
	if desc.ChainName == "" {
		return invalidParams("chainName is required")
	}
	if len(desc.RPCURLs) == 0 {
		return invalidParams("rpcUrls must not be empty")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.known[id] = true
	p.added = append(p.added, desc)
	p.debug("wallet_addEthereumChain %s (%s)", desc.ChainID, desc.ChainName)
	return nil
}

// personalAPI serves the personal_ namespace.
type personalAPI struct{ p *Peer }

// Sign produces an EIP-191 personal signature with v in {27, 28}.
func (api *personalAPI) Sign(data message, account common.Address) (hexutil.Bytes, error) {
	p := api.p
	if account != p.address {
		return nil, &rpcError{code: walletrpc.CodeUnauthorized, msg: "unknown account " + account.Hex()}
	}
	if p.cfg.RejectSign {
		return nil, userRejected("message signature.")
	}

	sig, err := crypto.Sign(accounts.TextHash(data), p.key)
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	p.debug("personal_sign %d bytes", len(data))
	return sig, nil
}

// EcRecover returns the address that produced sig over data.
func (api *personalAPI) EcRecover(data message, sig hexutil.Bytes) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, invalidParams("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}

	raw := make([]byte, len(sig))
	copy(raw, sig)
	if raw[crypto.RecoveryIDOffset] >= 27 {
		raw[crypto.RecoveryIDOffset] -= 27
	}
	if raw[crypto.RecoveryIDOffset] > 1 {
		return common.Address{}, invalidParams("invalid recovery id %d", sig[crypto.RecoveryIDOffset])
	}

	pub, err := crypto.SigToPub(accounts.TextHash(data), raw)
	if err != nil {
		return common.Address{}, invalidParams("recovering signer: %v", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
