package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swapScope/internal/chain"
	"swapScope/internal/config"
	"swapScope/internal/dex"
	"swapScope/internal/model"
	"swapScope/internal/swap"
)

// runQuote is the read-only path: it never needs a signing key and sends
// nothing on-chain.
func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if cfg.Amount == "" {
		return fmt.Errorf("amount is required")
	}

	poolAddr, err := parseAddress("pool", cfg.Pool)
	if err != nil {
		return err
	}
	quoterAddr, err := parseAddress("quoter", cfg.Quoter)
	if err != nil {
		return err
	}
	wethAddr, err := parseAddress("weth", cfg.WETH)
	if err != nil {
		return err
	}

	tokenInAddr := wethAddr
	if cfg.TokenIn != "" {
		if tokenInAddr, err = parseAddress("token-in", cfg.TokenIn); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chain.NewClient(ctx, cfg.RPCURL, "")
	if err != nil {
		return err
	}
	defer client.Close()

	pool, err := dex.FetchPool(ctx, client, client.ChainID(), poolAddr)
	if err != nil {
		return err
	}
	tokenIn, tokenOut, err := chooseDirection(pool, tokenInAddr)
	if err != nil {
		return err
	}

	amountIn, err := model.ParseAmount(cfg.Amount, tokenIn.Decimals)
	if err != nil {
		return err
	}

	amountOut, err := dex.QuoteExactInputSingle(ctx, client, quoterAddr, amountIn, tokenIn, tokenOut, pool.Fee)
	if err != nil {
		return err
	}

	minOut, err := swap.MinimumOut(amountOut, cfg.SlippageBps)
	if err != nil {
		return err
	}

	logger.Info("quote",
		zap.String("token_in", tokenIn.Symbol),
		zap.String("token_out", tokenOut.Symbol),
		zap.Uint32("fee", pool.Fee),
		zap.String("amount_in", model.FormatAmount(amountIn, tokenIn.Decimals)),
		zap.String("amount_out", model.FormatAmount(amountOut, tokenOut.Decimals)),
		zap.String("minimum_out", model.FormatAmount(minOut, tokenOut.Decimals)),
		zap.Uint64("slippage_bps", cfg.SlippageBps),
	)

	return nil
}
