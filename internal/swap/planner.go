package swap

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"swapScope/internal/chain"
	"swapScope/internal/dex"
	"swapScope/internal/model"
)

// PendingPlan is a trade plus its prerequisite transactions, before the
// swap calldata itself is encoded.
type PendingPlan struct {
	Trade    model.Trade
	Deposit  *model.TxRequest
	Approval *model.TxRequest
}

// Planner decides which prerequisite transactions a swap needs based on the
// wallet's live balance and allowance.
type Planner struct {
	ledger chain.Ledger
	router common.Address
	weth   common.Address
	logger *zap.Logger
}

// NewPlanner builds a Planner. router is the swap-execution contract the
// allowance must cover; weth is the chain's canonical wrapped-native token.
func NewPlanner(ledger chain.Ledger, router, weth common.Address, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{ledger: ledger, router: router, weth: weth, logger: logger}
}

// Plan reads the wallet's balance and allowance for tokenIn and constructs
// the pending plan. A balance shortfall adds a deposit step only when
// tokenIn is the wrapped-native token; the deposit converts exactly
// amountIn of native currency. An allowance shortfall adds an approval for
// exactly amountIn, never unlimited. Re-running against unchanged chain
// state yields the same steps.
func (p *Planner) Plan(ctx context.Context, pool model.Pool, tokenIn, tokenOut model.Token, amountIn, amountOut *big.Int) (PendingPlan, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return PendingPlan{}, fmt.Errorf("%w: plan amount must be positive", model.ErrInvalidAmount)
	}
	if !pool.Has(tokenIn) || !pool.Has(tokenOut) {
		return PendingPlan{}, fmt.Errorf("%w: pair %s/%s not traded by pool", model.ErrInvalidTokenData, tokenIn.Symbol, tokenOut.Symbol)
	}

	wallet := p.ledger.From()
	plan := PendingPlan{
		Trade: model.Trade{
			Pool:     pool,
			TokenIn:  tokenIn,
			TokenOut: tokenOut,
			Quote:    model.Quote{AmountIn: amountIn, AmountOut: amountOut},
		},
	}

	balance, err := dex.FetchBalance(ctx, p.ledger, tokenIn.Address, wallet)
	if err != nil {
		return PendingPlan{}, fmt.Errorf("read balance: %w", err)
	}
	if balance.Cmp(amountIn) < 0 {
		if tokenIn.Is(p.weth) {
			deposit, err := encodeDeposit(p.weth, amountIn)
			if err != nil {
				return PendingPlan{}, err
			}
			plan.Deposit = &deposit
			p.logger.Info("wrap required",
				zap.String("balance", balance.String()),
				zap.String("amount_in", amountIn.String()),
			)
		} else {
			// Only the native-wrap case is covered; a non-WETH shortfall
			// is left for the swap to revert on-chain.
			p.logger.Warn("balance below amount and token is not wrapped-native",
				zap.String("token", tokenIn.Address.Hex()),
				zap.String("balance", balance.String()),
				zap.String("amount_in", amountIn.String()),
			)
		}
	}

	allowance, err := dex.FetchAllowance(ctx, p.ledger, tokenIn.Address, wallet, p.router)
	if err != nil {
		return PendingPlan{}, fmt.Errorf("read allowance: %w", err)
	}
	if allowance.Cmp(amountIn) < 0 {
		approval, err := encodeApprove(tokenIn.Address, p.router, amountIn)
		if err != nil {
			return PendingPlan{}, err
		}
		plan.Approval = &approval
		p.logger.Info("approval required",
			zap.String("allowance", allowance.String()),
			zap.String("amount_in", amountIn.String()),
		)
	}

	return plan, nil
}

func encodeDeposit(weth common.Address, amount *big.Int) (model.TxRequest, error) {
	parsed, err := dex.WETHABI()
	if err != nil {
		return model.TxRequest{}, fmt.Errorf("parse weth abi: %w", err)
	}
	data, err := parsed.Pack("deposit")
	if err != nil {
		return model.TxRequest{}, fmt.Errorf("pack deposit: %w", err)
	}
	return model.TxRequest{To: weth, Data: data, Value: new(big.Int).Set(amount)}, nil
}

func encodeApprove(token, spender common.Address, amount *big.Int) (model.TxRequest, error) {
	parsed, err := dex.ERC20ABI()
	if err != nil {
		return model.TxRequest{}, fmt.Errorf("parse erc20 abi: %w", err)
	}
	data, err := parsed.Pack("approve", spender, amount)
	if err != nil {
		return model.TxRequest{}, fmt.Errorf("pack approve: %w", err)
	}
	return model.TxRequest{To: token, Data: data, Value: new(big.Int)}, nil
}
