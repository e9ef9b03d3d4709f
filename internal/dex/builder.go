package dex

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"swapScope/internal/chain"
	"swapScope/internal/model"
)

// BuildToken converts raw token metadata into a Token. Pure; validates that
// decimals fits the uint8 range every amount conversion relies on.
func BuildToken(chainID uint64, meta TokenMeta) (model.Token, error) {
	if meta.Decimals == nil || meta.Decimals.Sign() < 0 || meta.Decimals.Cmp(big.NewInt(math.MaxUint8)) > 0 {
		return model.Token{}, fmt.Errorf("%w: token %s decimals %v", model.ErrInvalidTokenData, meta.Address.Hex(), meta.Decimals)
	}
	return model.Token{
		ChainID:  chainID,
		Address:  meta.Address,
		Decimals: uint8(meta.Decimals.Uint64()),
		Symbol:   meta.Symbol,
		Name:     meta.Name,
	}, nil
}

// BuildPool converts raw pool state plus its two built tokens into a Pool.
// Token order is authoritative from chain and is taken as-given.
func BuildPool(state PoolState, token0, token1 model.Token) (model.Pool, error) {
	if token0.Address != state.Token0 || token1.Address != state.Token1 {
		return model.Pool{}, fmt.Errorf("%w: pool tokens %s/%s do not match %s/%s",
			model.ErrInvalidTokenData, token0.Address.Hex(), token1.Address.Hex(), state.Token0.Hex(), state.Token1.Hex())
	}
	if state.Fee == nil || !state.Fee.IsUint64() || state.Fee.Uint64() > math.MaxUint32 {
		return model.Pool{}, fmt.Errorf("%w: pool fee %v", model.ErrInvalidTokenData, state.Fee)
	}
	if state.Tick == nil || !state.Tick.IsInt64() || state.Tick.Int64() > math.MaxInt32 || state.Tick.Int64() < math.MinInt32 {
		return model.Pool{}, fmt.Errorf("%w: pool tick %v", model.ErrInvalidTokenData, state.Tick)
	}
	return model.Pool{
		Token0:       token0,
		Token1:       token1,
		Fee:          uint32(state.Fee.Uint64()),
		SqrtPriceX96: state.SqrtPriceX96,
		Liquidity:    state.Liquidity,
		Tick:         int32(state.Tick.Int64()),
	}, nil
}

// FetchPool reads live pool state and both token metadata sets, then builds
// the typed Pool. The two token fetches are independent and run
// concurrently; the result does not depend on their completion order.
func FetchPool(ctx context.Context, ledger chain.Ledger, chainID uint64, pool common.Address) (model.Pool, error) {
	state, err := FetchPoolState(ctx, ledger, pool)
	if err != nil {
		return model.Pool{}, err
	}

	var meta0, meta1 TokenMeta
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		meta0, err = FetchTokenMeta(gctx, ledger, state.Token0)
		return err
	})
	g.Go(func() error {
		var err error
		meta1, err = FetchTokenMeta(gctx, ledger, state.Token1)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Pool{}, err
	}

	token0, err := BuildToken(chainID, meta0)
	if err != nil {
		return model.Pool{}, err
	}
	token1, err := BuildToken(chainID, meta1)
	if err != nil {
		return model.Pool{}, err
	}

	return BuildPool(state, token0, token1)
}
