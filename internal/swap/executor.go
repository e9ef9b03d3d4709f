package swap

import (
	"context"
	"time"

	"go.uber.org/zap"

	"swapScope/internal/chain"
	"swapScope/internal/model"
)

// Executor submits a plan's transactions strictly one at a time, waiting for
// each inclusion before sending the next. A failure aborts the sequence;
// later steps are never attempted and nothing is resubmitted.
type Executor struct {
	ledger chain.Ledger
	logger *zap.Logger
}

func NewExecutor(ledger chain.Ledger, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{ledger: ledger, logger: logger}
}

// Execute runs the plan and returns a receipt per confirmed step, in order.
// On failure the receipts of the steps confirmed so far are returned with
// the error.
func (e *Executor) Execute(ctx context.Context, plan model.TradePlan) ([]model.Receipt, error) {
	steps := plan.Steps()
	receipts := make([]model.Receipt, 0, len(steps))

	for _, step := range steps {
		e.logger.Info("submit transaction",
			zap.String("step", step.Name),
			zap.String("to", step.Tx.To.Hex()),
			zap.String("value", step.Tx.Value.String()),
		)

		submittedAt := time.Now().UTC().Format(time.RFC3339Nano)
		hash, err := e.ledger.Send(ctx, step.Tx)
		if err != nil {
			return receipts, err
		}

		receipt, err := e.ledger.Wait(ctx, hash)
		if err != nil {
			return receipts, err
		}

		e.logger.Info("transaction confirmed",
			zap.String("step", step.Name),
			zap.String("tx_hash", hash.Hex()),
			zap.Uint64("block", receipt.BlockNumber.Uint64()),
			zap.Uint64("gas_used", receipt.GasUsed),
		)

		receipts = append(receipts, model.Receipt{
			Step:        step.Name,
			TxHash:      hash.Hex(),
			BlockNumber: receipt.BlockNumber.Uint64(),
			GasUsed:     receipt.GasUsed,
			SubmittedAt: submittedAt,
		})
	}

	return receipts, nil
}
