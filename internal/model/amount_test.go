package model

import (
	"errors"
	"math/big"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		name     string
		amount   string
		decimals uint8
		want     string
		wantErr  bool
	}{
		{"fractional eth", "0.001", 18, "1000000000000000", false},
		{"whole units", "2", 6, "2000000", false},
		{"exact precision", "0.000001", 6, "1", false},
		{"too precise", "0.0000001", 6, "", true},
		{"zero", "0", 18, "", true},
		{"negative", "-1", 18, "", true},
		{"garbage", "abc", 18, "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAmount(tc.amount, tc.decimals)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Fatalf("expected invalid amount, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want, _ := new(big.Int).SetString(tc.want, 10)
			if got.Cmp(want) != 0 {
				t.Fatalf("raw amount mismatch: got %s, want %s", got, want)
			}
		})
	}
}

func TestFormatAmountRoundTrips(t *testing.T) {
	raw, _ := new(big.Int).SetString("1000000000000000", 10)
	if got := FormatAmount(raw, 18); got != "0.001" {
		t.Fatalf("format mismatch: %s", got)
	}
}

func TestTradePlanSteps(t *testing.T) {
	swap := TxRequest{Value: big.NewInt(0)}

	bare := TradePlan{Swap: swap}
	if steps := bare.Steps(); len(steps) != 1 || steps[0].Name != "swap" {
		t.Fatalf("bare plan steps: %+v", steps)
	}

	deposit := TxRequest{Value: big.NewInt(1)}
	approval := TxRequest{Value: big.NewInt(0)}
	full := TradePlan{Deposit: &deposit, Approval: &approval, Swap: swap}
	steps := full.Steps()
	if len(steps) != 3 {
		t.Fatalf("full plan must have 3 steps, got %d", len(steps))
	}
	for i, want := range []string{"deposit", "approval", "swap"} {
		if steps[i].Name != want {
			t.Fatalf("step %d is %s, want %s", i, steps[i].Name, want)
		}
	}
}
