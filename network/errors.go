package network

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionFailed indicates the client could not reach the node.
	ErrConnectionFailed = errors.New("network: connection failed")

	// ErrAuthFailed indicates the node rejected the RPC credentials.
	ErrAuthFailed = errors.New("network: authentication failed")

	// ErrTxNotFound indicates the requested transaction or output does not exist.
	ErrTxNotFound = errors.New("network: transaction not found")

	// ErrBroadcastRejected indicates the node rejected the broadcast transaction.
	ErrBroadcastRejected = errors.New("network: broadcast rejected")

	// ErrInvalidResponse indicates the node returned a malformed or unexpected response.
	ErrInvalidResponse = errors.New("network: invalid response")

	// ErrFeeUnavailable indicates the node has no fee estimate yet.
	ErrFeeUnavailable = errors.New("network: fee estimate unavailable")

	// ErrNoRPCURL indicates no RPC endpoint was configured.
	ErrNoRPCURL = errors.New("network: no RPC URL configured")
)

// Bitcoin Core RPC error codes the client maps to sentinels.
const (
	codeInvalidAddressOrKey  = -5
	codeVerifyRejected       = -26
	codeVerifyAlreadyInChain = -27
)

// RPCError is an error object returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("network: rpc error %d: %s", e.Code, e.Message)
}
