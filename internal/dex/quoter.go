package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"swapScope/internal/chain"
	"swapScope/internal/model"
)

type quoteExactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	AmountIn          *big.Int
	Fee               *big.Int
	SqrtPriceLimitX96 *big.Int
}

// QuoteExactInputSingle simulates a QuoterV2 quoteExactInputSingle call and
// returns the expected output amount. The price-limit sentinel is zero (no
// limit); auxiliary outputs (post-trade price, ticks crossed, gas estimate)
// are discarded. A reverted simulation means the pool cannot serve the
// requested size and is fatal to the run.
func QuoteExactInputSingle(ctx context.Context, ledger chain.Ledger, quoter common.Address, amountIn *big.Int, tokenIn, tokenOut model.Token, fee uint32) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, fmt.Errorf("%w: quote amount must be positive", model.ErrInvalidAmount)
	}

	parsed, err := QuoterABI()
	if err != nil {
		return nil, fmt.Errorf("parse quoter abi: %w", err)
	}

	data, err := parsed.Pack("quoteExactInputSingle", quoteExactInputSingleParams{
		TokenIn:           tokenIn.Address,
		TokenOut:          tokenOut.Address,
		AmountIn:          amountIn,
		Fee:               new(big.Int).SetUint64(uint64(fee)),
		SqrtPriceLimitX96: new(big.Int),
	})
	if err != nil {
		return nil, fmt.Errorf("pack quote: %w", err)
	}

	resp, err := ledger.Simulate(ctx, quoter, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s -> %s for %s: %v",
			model.ErrQuoteUnavailable, tokenIn.Symbol, tokenOut.Symbol, amountIn, err)
	}

	values, err := parsed.Unpack("quoteExactInputSingle", resp)
	if err != nil {
		return nil, fmt.Errorf("%w: unpack quote: %v", model.ErrQuoteUnavailable, err)
	}

	amountOut, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("quote amount out: %w", err)
	}
	return amountOut, nil
}
