package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"swapScope/internal/model"
)

func main() {
	root := &cobra.Command{
		Use:          "swapper",
		Short:        "Single-shot Uniswap V3 swap tool",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	swapCmd := &cobra.Command{
		Use:   "swap",
		Short: "Plan and execute one exact-input swap",
		RunE:  runSwap,
	}
	addCommonFlags(swapCmd)
	swapCmd.Flags().String("recipient", "", "output recipient (default: signer address)")
	swapCmd.Flags().String("out", "", "optional receipts JSONL path")
	root.AddCommand(swapCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote the swap without sending transactions",
		RunE:  runQuote,
	}
	addCommonFlags(quoteCmd)
	root.AddCommand(quoteCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "RPC endpoint URL")
	cmd.Flags().String("pool", "", "V3 pool address")
	cmd.Flags().String("quoter", "", "QuoterV2 contract address")
	cmd.Flags().String("router", "", "SwapRouter contract address")
	cmd.Flags().String("weth", "", "wrapped-native token address")
	cmd.Flags().String("token-in", "", "input token address (default: the pool side matching --weth)")
	cmd.Flags().String("amount", "", "input amount in human units of the input token")
	cmd.Flags().Uint64("slippage-bps", 50, "slippage tolerance in basis points")
	cmd.Flags().Duration("deadline", 20*time.Minute, "swap deadline offset")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func parseAddress(name, value string) (common.Address, error) {
	if value == "" {
		return common.Address{}, fmt.Errorf("%s address is required", name)
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid %s address: %s", name, value)
	}
	return common.HexToAddress(value), nil
}

// chooseDirection picks the trade direction from the pool's two sides.
func chooseDirection(pool model.Pool, tokenIn common.Address) (model.Token, model.Token, error) {
	switch tokenIn {
	case pool.Token0.Address:
		return pool.Token0, pool.Token1, nil
	case pool.Token1.Address:
		return pool.Token1, pool.Token0, nil
	default:
		return model.Token{}, model.Token{}, fmt.Errorf("input token %s is not a side of the pool (%s / %s)",
			tokenIn.Hex(), pool.Token0.Address.Hex(), pool.Token1.Address.Hex())
	}
}
