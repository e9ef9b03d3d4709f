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
	"swapScope/internal/storage"
	"swapScope/internal/swap"
)

func runSwap(cmd *cobra.Command, _ []string) error {
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
	if cfg.PrivateKey == "" {
		return fmt.Errorf("SWAPPER_PRIVATE_KEY is required")
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
	routerAddr, err := parseAddress("router", cfg.Router)
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

	client, err := chain.NewClient(ctx, cfg.RPCURL, cfg.PrivateKey)
	if err != nil {
		return err
	}
	defer client.Close()

	recipient := client.From()
	if cfg.Recipient != "" {
		if recipient, err = parseAddress("recipient", cfg.Recipient); err != nil {
			return err
		}
	}

	pool, err := dex.FetchPool(ctx, client, client.ChainID(), poolAddr)
	if err != nil {
		return err
	}
	tokenIn, tokenOut, err := chooseDirection(pool, tokenInAddr)
	if err != nil {
		return err
	}

	logger.Info("pool loaded",
		zap.String("pool", poolAddr.Hex()),
		zap.String("token_in", tokenIn.Symbol),
		zap.String("token_out", tokenOut.Symbol),
		zap.Uint32("fee", pool.Fee),
		zap.Int32("tick", pool.Tick),
	)

	amountIn, err := model.ParseAmount(cfg.Amount, tokenIn.Decimals)
	if err != nil {
		return err
	}

	amountOut, err := dex.QuoteExactInputSingle(ctx, client, quoterAddr, amountIn, tokenIn, tokenOut, pool.Fee)
	if err != nil {
		return err
	}
	logger.Info("quote obtained",
		zap.String("amount_in", amountIn.String()),
		zap.String("amount_out", amountOut.String()),
	)

	planner := swap.NewPlanner(client, routerAddr, wethAddr, logger)
	pending, err := planner.Plan(ctx, pool, tokenIn, tokenOut, amountIn, amountOut)
	if err != nil {
		return err
	}

	plan, err := swap.BuildPlan(pending, routerAddr, swap.SwapOptions{
		SlippageBps:    cfg.SlippageBps,
		DeadlineOffset: cfg.Deadline,
		Recipient:      recipient,
	})
	if err != nil {
		return err
	}
	logger.Info("plan ready", zap.Int("steps", len(plan.Steps())))

	executor := swap.NewExecutor(client, logger)
	receipts, execErr := executor.Execute(ctx, plan)

	if cfg.Out != "" && len(receipts) > 0 {
		var sink storage.Sink = storage.NewJsonlSink(cfg.Out)
		if err := sink.PutReceipts(receipts); err != nil {
			logger.Warn("write receipts failed", zap.String("out", cfg.Out), zap.Error(err))
		}
	}

	if execErr != nil {
		return execErr
	}

	final := receipts[len(receipts)-1]
	logger.Info("swap confirmed",
		zap.String("tx_hash", final.TxHash),
		zap.Uint64("block", final.BlockNumber),
		zap.Uint64("gas_used", final.GasUsed),
	)

	return nil
}
