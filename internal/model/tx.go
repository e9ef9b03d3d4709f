package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TxRequest is an opaque transaction payload for the ledger client.
type TxRequest struct {
	To    common.Address
	Data  []byte
	Value *big.Int
}

// TradePlan is the decided execution plan. Deposit and Approval are present
// only when required by live balance/allowance; Swap is always present.
// Submission order is deposit, approval, swap: each step's preconditions
// depend on the prior step's on-chain effect.
type TradePlan struct {
	Deposit  *TxRequest
	Approval *TxRequest
	Swap     TxRequest
}

// Step is a named transaction within a plan.
type Step struct {
	Name string
	Tx   TxRequest
}

// Steps returns the plan's transactions in mandatory submission order.
func (p TradePlan) Steps() []Step {
	steps := make([]Step, 0, 3)
	if p.Deposit != nil {
		steps = append(steps, Step{Name: "deposit", Tx: *p.Deposit})
	}
	if p.Approval != nil {
		steps = append(steps, Step{Name: "approval", Tx: *p.Approval})
	}
	steps = append(steps, Step{Name: "swap", Tx: p.Swap})
	return steps
}

// Receipt records the on-chain outcome of one submitted plan step.
type Receipt struct {
	Step        string `json:"step"`
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
	GasUsed     uint64 `json:"gas_used"`
	SubmittedAt string `json:"submitted_at"`
}
