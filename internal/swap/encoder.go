package swap

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"swapScope/internal/dex"
	"swapScope/internal/model"
)

const bpsDenominator = 10_000

// SwapOptions carries the execution policy applied when encoding the swap.
type SwapOptions struct {
	// SlippageBps is the maximum tolerated output shortfall in basis points.
	SlippageBps uint64
	// DeadlineOffset is added to the current time; the swap reverts if
	// mined after the resulting timestamp. Must be positive.
	DeadlineOffset time.Duration
	// Recipient receives the output tokens.
	Recipient common.Address
	// Now overrides the wall clock; zero means time.Now().
	Now time.Time
}

type exactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	Deadline          *big.Int
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

// MinimumOut applies the slippage tolerance to the quoted output:
// floor(amountOut * (10000 - slippageBps) / 10000). The multiplication is
// done in fixed-width 256-bit arithmetic with an explicit overflow check.
func MinimumOut(amountOut *big.Int, slippageBps uint64) (*big.Int, error) {
	if slippageBps > bpsDenominator {
		return nil, fmt.Errorf("slippage %d bps out of range [0, %d]", slippageBps, bpsDenominator)
	}
	if amountOut == nil || amountOut.Sign() < 0 {
		return nil, fmt.Errorf("%w: quoted output must be non-negative", model.ErrInvalidAmount)
	}

	out, overflow := uint256.FromBig(amountOut)
	if overflow {
		return nil, fmt.Errorf("%w: quoted output exceeds 256 bits", model.ErrInvalidAmount)
	}

	product, overflow := new(uint256.Int).MulOverflow(out, uint256.NewInt(bpsDenominator-slippageBps))
	if overflow {
		return nil, fmt.Errorf("%w: minimum-output computation overflows", model.ErrInvalidAmount)
	}

	return product.Div(product, uint256.NewInt(bpsDenominator)).ToBig(), nil
}

// EncodeSwap turns the trade into the final exactInputSingle transaction.
// The on-chain guarantee is amountOutMinimum; the price-limit sentinel
// stays zero. The deadline is always strictly in the future of the clock
// used for encoding.
func EncodeSwap(trade model.Trade, router common.Address, opts SwapOptions) (model.TxRequest, error) {
	if opts.DeadlineOffset <= 0 {
		return model.TxRequest{}, fmt.Errorf("deadline offset must be positive, got %s", opts.DeadlineOffset)
	}

	minOut, err := MinimumOut(trade.Quote.AmountOut, opts.SlippageBps)
	if err != nil {
		return model.TxRequest{}, err
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	deadline := now.Add(opts.DeadlineOffset).Unix()

	parsed, err := dex.RouterABI()
	if err != nil {
		return model.TxRequest{}, fmt.Errorf("parse router abi: %w", err)
	}

	data, err := parsed.Pack("exactInputSingle", exactInputSingleParams{
		TokenIn:           trade.TokenIn.Address,
		TokenOut:          trade.TokenOut.Address,
		Fee:               new(big.Int).SetUint64(uint64(trade.Pool.Fee)),
		Recipient:         opts.Recipient,
		Deadline:          big.NewInt(deadline),
		AmountIn:          trade.Quote.AmountIn,
		AmountOutMinimum:  minOut,
		SqrtPriceLimitX96: new(big.Int),
	})
	if err != nil {
		return model.TxRequest{}, fmt.Errorf("pack exactInputSingle: %w", err)
	}

	return model.TxRequest{To: router, Data: data, Value: new(big.Int)}, nil
}

// BuildPlan finalizes a pending plan into the ordered transaction sequence.
func BuildPlan(pending PendingPlan, router common.Address, opts SwapOptions) (model.TradePlan, error) {
	swapTx, err := EncodeSwap(pending.Trade, router, opts)
	if err != nil {
		return model.TradePlan{}, err
	}
	return model.TradePlan{
		Deposit:  pending.Deposit,
		Approval: pending.Approval,
		Swap:     swapTx,
	}, nil
}
