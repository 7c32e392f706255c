// Package token verifies ITLX token balances against an on-chain ERC-20
// contract. It is purely advisory: it reads the ledger and never touches
// registry state.
package token

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/itlx-network/agentreg/internal/circuitbreaker"
	"github.com/itlx-network/agentreg/internal/retry"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	ErrInvalidContract = errors.New("token: invalid contract address")
	ErrInvalidAmount   = errors.New("token: invalid minimum balance")
	ErrRPCConnection   = errors.New("token: RPC connection failed")
	ErrUnreachable     = errors.New("token: balance check unreachable")
)

// -----------------------------------------------------------------------------
// Outcome
// -----------------------------------------------------------------------------

// Outcome is the three-way result of a balance check.
type Outcome int

const (
	Sufficient   Outcome = iota // Balance >= threshold
	Insufficient                // Balance < threshold
	Unreachable                 // The check could not be completed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Sufficient:
		return "sufficient"
	case Insufficient:
		return "insufficient"
	case Unreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Verifier
// -----------------------------------------------------------------------------

// ERC20 minimal ABI for balanceOf
const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"}
]`

const (
	// DefaultCallTimeout bounds a single balanceOf call.
	DefaultCallTimeout = 10 * time.Second

	// DefaultMaxAttempts for transient RPC failures.
	DefaultMaxAttempts = 3

	// DefaultRetryBaseDelay between attempts (doubled with jitter).
	DefaultRetryBaseDelay = 200 * time.Millisecond

	// breakerKey: one circuit for the single RPC endpoint.
	breakerKey = "rpc"
)

// EthClient abstracts the go-ethereum client for testing.
type EthClient interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	Close()
}

// Config for creating a Verifier.
type Config struct {
	RPCURL     string
	Contract   string // ERC-20 token contract address
	MinBalance string // Threshold in whole tokens, e.g. "100"
	Decimals   int    // Token decimals

	CallTimeout    time.Duration // Zero means DefaultCallTimeout
	MaxAttempts    int           // Zero means DefaultMaxAttempts
	RetryBaseDelay time.Duration // Zero means DefaultRetryBaseDelay
}

// Option configures the verifier.
type Option func(*Verifier)

// WithClient sets a custom Ethereum client (useful for testing).
func WithClient(client EthClient) Option {
	return func(v *Verifier) {
		v.client = client
	}
}

// WithBreaker sets a custom circuit breaker.
func WithBreaker(b *circuitbreaker.Breaker) Option {
	return func(v *Verifier) {
		v.breaker = b
	}
}

// Verifier checks ERC-20 balances against a fixed threshold.
type Verifier struct {
	client    EthClient
	contract  common.Address
	tokenABI  abi.ABI
	threshold *big.Int
	decimals  int

	breaker     *circuitbreaker.Breaker
	callTimeout time.Duration
	maxAttempts int
	baseDelay   time.Duration
}

// New creates a Verifier. Dials the RPC endpoint unless WithClient is given.
func New(cfg Config, opts ...Option) (*Verifier, error) {
	if !common.IsHexAddress(cfg.Contract) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContract, cfg.Contract)
	}

	threshold, ok := ParseAmount(cfg.MinBalance, cfg.Decimals)
	if !ok || threshold.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, cfg.MinBalance)
	}

	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("parse ERC20 ABI: %w", err)
	}

	v := &Verifier{
		contract:    common.HexToAddress(cfg.Contract),
		tokenABI:    parsedABI,
		threshold:   threshold,
		decimals:    cfg.Decimals,
		breaker:     circuitbreaker.New(5, 30*time.Second),
		callTimeout: cfg.CallTimeout,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.RetryBaseDelay,
	}
	if v.callTimeout <= 0 {
		v.callTimeout = DefaultCallTimeout
	}
	if v.maxAttempts <= 0 {
		v.maxAttempts = DefaultMaxAttempts
	}
	if v.baseDelay <= 0 {
		v.baseDelay = DefaultRetryBaseDelay
	}

	for _, opt := range opts {
		opt(v)
	}

	if v.client == nil {
		client, err := ethclient.Dial(cfg.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRPCConnection, err)
		}
		v.client = client
	}

	return v, nil
}

// Threshold returns the configured minimum balance in smallest units.
func (v *Verifier) Threshold() *big.Int {
	return new(big.Int).Set(v.threshold)
}

// CheckBalance reports whether owner holds at least the threshold balance.
// RPC failures after retries surface as Unreachable with a wrapped error;
// the circuit breaker makes a dead endpoint fail fast.
func (v *Verifier) CheckBalance(ctx context.Context, owner string) (Outcome, error) {
	if !v.breaker.Allow(breakerKey) {
		return Unreachable, fmt.Errorf("%w: circuit open", ErrUnreachable)
	}

	var balance *big.Int
	err := retry.Do(ctx, v.maxAttempts, v.baseDelay, func() error {
		callCtx, cancel := context.WithTimeout(ctx, v.callTimeout)
		defer cancel()

		b, err := v.balanceOf(callCtx, common.HexToAddress(owner))
		if err != nil {
			return err
		}
		balance = b
		return nil
	})
	if err != nil {
		v.breaker.RecordFailure(breakerKey)
		return Unreachable, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	v.breaker.RecordSuccess(breakerKey)

	if balance.Cmp(v.threshold) >= 0 {
		return Sufficient, nil
	}
	return Insufficient, nil
}

// Close releases the underlying RPC client.
func (v *Verifier) Close() {
	if v.client != nil {
		v.client.Close()
	}
}

func (v *Verifier) balanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	data, err := v.tokenABI.Pack("balanceOf", owner)
	if err != nil {
		return nil, fmt.Errorf("pack balanceOf: %w", err)
	}

	result, err := v.client.CallContract(ctx, ethereum.CallMsg{
		To:   &v.contract,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("call balanceOf: %w", err)
	}

	out, err := v.tokenABI.Unpack("balanceOf", result)
	if err != nil {
		return nil, fmt.Errorf("unpack balanceOf: %w", err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected balanceOf output length %d", len(out))
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf output type %T", out[0])
	}

	return balance, nil
}
