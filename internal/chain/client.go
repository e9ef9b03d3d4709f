package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"swapScope/internal/model"
)

// Ledger is the minimal on-chain surface the planner and reader consume.
// It is passed explicitly into every component so tests can substitute a
// fake without process-wide state.
type Ledger interface {
	// Call performs a read-only eth_call against the latest block.
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	// Simulate executes contract logic as-if, without committing state.
	// Used for quoting; errors are returned unwrapped so the caller can
	// attach its own classification.
	Simulate(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	// Send signs and submits a transaction.
	Send(ctx context.Context, tx model.TxRequest) (common.Hash, error)
	// Wait blocks until the transaction is included and returns its receipt.
	Wait(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	// From returns the signing identity's address.
	From() common.Address
}

// Client wraps go-ethereum RPC and an in-process signer.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client

	chainID *big.Int
	key     *ecdsa.PrivateKey
	from    common.Address

	pollInterval time.Duration
}

// NewClient connects to the RPC endpoint and, when keyHex is non-empty,
// derives the signing identity from it. An empty key yields a read-only
// client whose Send always fails.
func NewClient(ctx context.Context, rpcURL, keyHex string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}

	ethClient := ethclient.NewClient(rpcClient)
	chainID, err := ethClient.ChainID(ctx)
	if err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("get chain id: %w", err)
	}

	c := &Client{
		rpcClient:    rpcClient,
		ethClient:    ethClient,
		chainID:      chainID,
		pollInterval: 2 * time.Second,
	}

	if keyHex != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(keyHex, "0x"))
		if err != nil {
			rpcClient.Close()
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		c.key = key
		c.from = crypto.PubkeyToAddress(key.PublicKey)
	}

	return c, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// ChainID returns the connected chain's ID.
func (c *Client) ChainID() uint64 {
	return c.chainID.Uint64()
}

// From returns the signer address, or the zero address in read-only mode.
func (c *Client) From() common.Address {
	return c.from
}

// Call performs a read-only eth_call against the latest block.
func (c *Client) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := c.ethClient.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: call %s: %v", model.ErrRemoteRead, to.Hex(), err)
	}
	return resp, nil
}

// Simulate runs an eth_call from the signer address without state change.
func (c *Client) Simulate(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	msg := ethereum.CallMsg{From: c.from, To: &to, Data: data}
	return c.ethClient.CallContract(ctx, msg, nil)
}

// Send signs the request as an EIP-1559 transaction and submits it. The
// signer's nonce is used strictly sequentially; callers must not submit
// concurrently from the same identity.
func (c *Client) Send(ctx context.Context, tx model.TxRequest) (common.Hash, error) {
	if c.key == nil {
		return common.Hash{}, fmt.Errorf("%w: client has no signing key", model.ErrSubmission)
	}

	nonce, err := c.ethClient.PendingNonceAt(ctx, c.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: get nonce: %v", model.ErrSubmission, err)
	}

	tipCap, err := c.ethClient.SuggestGasTipCap(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: suggest tip cap: %v", model.ErrSubmission, err)
	}

	header, err := c.ethClient.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: get head: %v", model.ErrSubmission, err)
	}
	baseFee := header.BaseFee
	if baseFee == nil {
		baseFee = new(big.Int)
	}
	feeCap := new(big.Int).Add(tipCap, new(big.Int).Mul(baseFee, big.NewInt(2)))

	value := tx.Value
	if value == nil {
		value = new(big.Int)
	}

	to := tx.To
	gas, err := c.ethClient.EstimateGas(ctx, ethereum.CallMsg{
		From:  c.from,
		To:    &to,
		Value: value,
		Data:  tx.Data,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: estimate gas: %v", model.ErrSubmission, err)
	}

	signed, err := types.SignNewTx(c.key, types.LatestSignerForChainID(c.chainID), &types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      tx.Data,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: sign: %v", model.ErrSubmission, err)
	}

	if err := c.ethClient.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("%w: send: %v", model.ErrSubmission, err)
	}

	return signed.Hash(), nil
}

// Wait polls for the transaction receipt until it is mined. A reverted
// transaction is reported as a submission failure.
func (c *Client) Wait(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.ethClient.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, fmt.Errorf("%w: tx %s reverted", model.ErrSubmission, hash.Hex())
			}
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("%w: get receipt %s: %v", model.ErrSubmission, hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: wait %s: %v", model.ErrSubmission, hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
