package swap

import (
	"bytes"
	"math/big"
	"reflect"
	"testing"
	"time"

	"swapScope/internal/dex"
	"swapScope/internal/model"
)

func TestMinimumOut(t *testing.T) {
	cases := []struct {
		name        string
		amountOut   *big.Int
		slippageBps uint64
		want        *big.Int
		wantErr     bool
	}{
		{"half percent", big.NewInt(500_000), 50, big.NewInt(497_500), false},
		{"zero slippage keeps amount", big.NewInt(500_000), 0, big.NewInt(500_000), false},
		{"full slippage", big.NewInt(500_000), 10_000, big.NewInt(0), false},
		{"floors remainder", big.NewInt(3), 1, big.NewInt(2), false},
		{"zero output", big.NewInt(0), 50, big.NewInt(0), false},
		{"out of range", big.NewInt(1), 10_001, nil, true},
		{"negative output", big.NewInt(-1), 50, nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := MinimumOut(tc.amountOut, tc.slippageBps)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Cmp(tc.want) != 0 {
				t.Fatalf("minimum out mismatch: got %s, want %s", got, tc.want)
			}
		})
	}
}

// The floor is strictly below the quote for any positive slippage, and
// equal only at zero.
func TestMinimumOutBound(t *testing.T) {
	amountOut, _ := new(big.Int).SetString("123456789123456789123456789", 10)

	for _, bps := range []uint64{0, 1, 50, 9_999, 10_000} {
		minOut, err := MinimumOut(amountOut, bps)
		if err != nil {
			t.Fatalf("unexpected error at %d bps: %v", bps, err)
		}
		switch {
		case bps == 0 && minOut.Cmp(amountOut) != 0:
			t.Fatalf("zero slippage must keep the full quote, got %s", minOut)
		case bps > 0 && minOut.Cmp(amountOut) >= 0:
			t.Fatalf("%d bps must reduce the quote, got %s", bps, minOut)
		}
	}
}

func TestMinimumOutOverflowChecked(t *testing.T) {
	large := new(big.Int).Lsh(big.NewInt(1), 240)
	if _, err := MinimumOut(large, 50); err != nil {
		t.Fatalf("240-bit quote must fit: %v", err)
	}

	// The checked multiply rejects quotes whose scaled product would wrap.
	huge := new(big.Int).Lsh(big.NewInt(1), 255)
	if _, err := MinimumOut(huge, 50); err == nil {
		t.Fatalf("expected overflow rejection for scaled 255-bit quote")
	}

	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	if _, err := MinimumOut(tooBig, 50); err == nil {
		t.Fatalf("expected overflow rejection for 257-bit quote")
	}
}

func testTrade() model.Trade {
	pool, weth, up := testPool()
	return model.Trade{
		Pool:     pool,
		TokenIn:  weth,
		TokenOut: up,
		Quote: model.Quote{
			AmountIn:  big.NewInt(1_000_000_000_000_000),
			AmountOut: big.NewInt(500_000),
		},
	}
}

func TestEncodeSwapRejectsNonPositiveDeadline(t *testing.T) {
	for _, offset := range []time.Duration{0, -time.Minute} {
		_, err := EncodeSwap(testTrade(), routerAddr, SwapOptions{
			SlippageBps:    50,
			DeadlineOffset: offset,
			Recipient:      walletAddr,
		})
		if err == nil {
			t.Fatalf("expected error for deadline offset %s", offset)
		}
	}
}

func TestEncodeSwapCalldata(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tx, err := EncodeSwap(testTrade(), routerAddr, SwapOptions{
		SlippageBps:    50,
		DeadlineOffset: 20 * time.Minute,
		Recipient:      walletAddr,
		Now:            now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tx.To != routerAddr {
		t.Fatalf("swap targets %s, want router", tx.To.Hex())
	}
	if tx.Value.Sign() != 0 {
		t.Fatalf("swap must carry no native value, got %s", tx.Value)
	}

	parsed, err := dex.RouterABI()
	if err != nil {
		t.Fatalf("router abi: %v", err)
	}
	method := parsed.Methods["exactInputSingle"]
	if !bytes.Equal(tx.Data[:4], method.ID) {
		t.Fatalf("selector mismatch")
	}

	values, err := method.Inputs.Unpack(tx.Data[4:])
	if err != nil {
		t.Fatalf("unpack params: %v", err)
	}
	params := reflect.ValueOf(values[0])

	deadline := params.FieldByName("Deadline").Interface().(*big.Int)
	wantDeadline := now.Add(20 * time.Minute).Unix()
	if deadline.Int64() != wantDeadline {
		t.Fatalf("deadline mismatch: got %s, want %d", deadline, wantDeadline)
	}
	if deadline.Int64() <= now.Unix() {
		t.Fatalf("deadline must be strictly in the future")
	}

	minOut := params.FieldByName("AmountOutMinimum").Interface().(*big.Int)
	if minOut.Int64() != 497_500 {
		t.Fatalf("amountOutMinimum mismatch: %s", minOut)
	}

	amountIn := params.FieldByName("AmountIn").Interface().(*big.Int)
	if amountIn.Int64() != 1_000_000_000_000_000 {
		t.Fatalf("amountIn mismatch: %s", amountIn)
	}

	priceLimit := params.FieldByName("SqrtPriceLimitX96").Interface().(*big.Int)
	if priceLimit.Sign() != 0 {
		t.Fatalf("price-limit sentinel must be zero, got %s", priceLimit)
	}

	fee := params.FieldByName("Fee").Interface().(*big.Int)
	if fee.Int64() != 3000 {
		t.Fatalf("fee mismatch: %s", fee)
	}
}
