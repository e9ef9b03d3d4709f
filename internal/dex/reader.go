package dex

import (
	"bytes"
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"swapScope/internal/chain"
	"swapScope/internal/model"
)

// PoolState is the raw on-chain view of a V3 pool.
type PoolState struct {
	Token0       common.Address
	Token1       common.Address
	Fee          *big.Int
	Liquidity    *big.Int
	SqrtPriceX96 *big.Int
	Tick         *big.Int
}

// TokenMeta is the raw on-chain view of an ERC-20 token.
type TokenMeta struct {
	Address  common.Address
	Symbol   string
	Name     string
	Decimals *big.Int
}

// FetchPoolState reads token0, token1, fee, liquidity and slot0 from the
// pool. The five calls are independent reads of the same remote snapshot,
// so they fan out concurrently and join before returning. Any failure
// aborts the fetch; nothing is retried.
func FetchPoolState(ctx context.Context, ledger chain.Ledger, pool common.Address) (PoolState, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return PoolState{}, fmt.Errorf("parse pool abi: %w", err)
	}

	var state PoolState
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		values, err := callMethod(gctx, ledger, pool, poolABI, "token0")
		if err != nil {
			return err
		}
		state.Token0, err = asAddress(values[0])
		return err
	})
	g.Go(func() error {
		values, err := callMethod(gctx, ledger, pool, poolABI, "token1")
		if err != nil {
			return err
		}
		state.Token1, err = asAddress(values[0])
		return err
	})
	g.Go(func() error {
		values, err := callMethod(gctx, ledger, pool, poolABI, "fee")
		if err != nil {
			return err
		}
		state.Fee, err = asBigInt(values[0])
		return err
	})
	g.Go(func() error {
		values, err := callMethod(gctx, ledger, pool, poolABI, "liquidity")
		if err != nil {
			return err
		}
		state.Liquidity, err = asBigInt(values[0])
		return err
	})
	g.Go(func() error {
		values, err := callMethod(gctx, ledger, pool, poolABI, "slot0")
		if err != nil {
			return err
		}
		if len(values) < 2 {
			return fmt.Errorf("%w: slot0 returned %d values", model.ErrRemoteRead, len(values))
		}
		if state.SqrtPriceX96, err = asBigInt(values[0]); err != nil {
			return err
		}
		state.Tick, err = asBigInt(values[1])
		return err
	})

	if err := g.Wait(); err != nil {
		return PoolState{}, fmt.Errorf("pool %s: %w", pool.Hex(), err)
	}
	return state, nil
}

// FetchTokenMeta reads symbol, decimals and name concurrently. Symbol and
// name fall back to the bytes32 variant used by pre-standard tokens.
func FetchTokenMeta(ctx context.Context, ledger chain.Ledger, token common.Address) (TokenMeta, error) {
	erc20, err := ERC20ABI()
	if err != nil {
		return TokenMeta{}, fmt.Errorf("parse erc20 abi: %w", err)
	}

	meta := TokenMeta{Address: token}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		values, err := callMethod(gctx, ledger, token, erc20, "decimals")
		if err != nil {
			return err
		}
		meta.Decimals, err = asBigInt(values[0])
		return err
	})
	g.Go(func() error {
		symbol, err := callString(gctx, ledger, token, "symbol")
		if err != nil {
			return err
		}
		meta.Symbol = symbol
		return nil
	})
	g.Go(func() error {
		name, err := callString(gctx, ledger, token, "name")
		if err != nil {
			return err
		}
		meta.Name = name
		return nil
	})

	if err := g.Wait(); err != nil {
		return TokenMeta{}, fmt.Errorf("token %s: %w", token.Hex(), err)
	}
	return meta, nil
}

// FetchBalance reads the ERC-20 balance of owner.
func FetchBalance(ctx context.Context, ledger chain.Ledger, token, owner common.Address) (*big.Int, error) {
	erc20, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := callMethod(ctx, ledger, token, erc20, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// FetchAllowance reads the allowance owner has granted to spender.
func FetchAllowance(ctx context.Context, ledger chain.Ledger, token, owner, spender common.Address) (*big.Int, error) {
	erc20, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := callMethod(ctx, ledger, token, erc20, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

func callMethod(ctx context.Context, ledger chain.Ledger, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	resp, err := ledger.Call(ctx, to, data)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("%w: unpack %s: %v", model.ErrRemoteRead, method, err)
	}
	return values, nil
}

// callString calls a no-arg string method, decoding bytes32 results from
// tokens that predate the string ABI.
func callString(ctx context.Context, ledger chain.Ledger, to common.Address, method string) (string, error) {
	erc20, err := ERC20ABI()
	if err != nil {
		return "", fmt.Errorf("parse erc20 abi: %w", err)
	}
	data, err := erc20.Pack(method)
	if err != nil {
		return "", fmt.Errorf("pack %s: %w", method, err)
	}
	resp, err := ledger.Call(ctx, to, data)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", method, err)
	}

	if values, err := erc20.Unpack(method, resp); err == nil {
		if s, ok := values[0].(string); ok {
			return s, nil
		}
	}

	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		return "", fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}
	values, err := bytes32ABI.Unpack(method, resp)
	if err != nil {
		return "", fmt.Errorf("%w: unpack %s: %v", model.ErrRemoteRead, method, err)
	}
	s, ok := bytes32ToString(values[0])
	if !ok {
		return "", fmt.Errorf("%w: %s returned %T", model.ErrRemoteRead, method, values[0])
	}
	return s, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("%w: unsupported address type %T", model.ErrRemoteRead, value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("%w: unsupported int type %T", model.ErrRemoteRead, value)
	}
}
