package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"swapScope/internal/model"
)

// fakeLedger serves canned eth_call responses keyed by method selector.
type fakeLedger struct {
	responses map[[4]byte]func(to common.Address) ([]byte, error)
	jitter    bool
}

func (f *fakeLedger) Call(_ context.Context, to common.Address, data []byte) ([]byte, error) {
	if f.jitter {
		time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
	}
	var selector [4]byte
	copy(selector[:], data[:4])
	handler, ok := f.responses[selector]
	if !ok {
		return nil, fmt.Errorf("%w: no handler for selector %x", model.ErrRemoteRead, selector)
	}
	return handler(to)
}

func (f *fakeLedger) Simulate(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return f.Call(ctx, to, data)
}

func (f *fakeLedger) Send(context.Context, model.TxRequest) (common.Hash, error) {
	return common.Hash{}, fmt.Errorf("read-only fake")
}

func (f *fakeLedger) Wait(context.Context, common.Hash) (*types.Receipt, error) {
	return nil, fmt.Errorf("read-only fake")
}

func (f *fakeLedger) From() common.Address { return common.Address{} }

func poolFake(t *testing.T, token0, token1 common.Address) *fakeLedger {
	t.Helper()

	poolABI, err := V3PoolABI()
	if err != nil {
		t.Fatalf("pool abi: %v", err)
	}
	erc20, err := ERC20ABI()
	if err != nil {
		t.Fatalf("erc20 abi: %v", err)
	}

	fake := &fakeLedger{responses: make(map[[4]byte]func(common.Address) ([]byte, error))}

	register := func(id []byte, fn func(common.Address) ([]byte, error)) {
		var sel [4]byte
		copy(sel[:], id)
		fake.responses[sel] = fn
	}

	register(poolABI.Methods["token0"].ID, func(common.Address) ([]byte, error) {
		return poolABI.Methods["token0"].Outputs.Pack(token0)
	})
	register(poolABI.Methods["token1"].ID, func(common.Address) ([]byte, error) {
		return poolABI.Methods["token1"].Outputs.Pack(token1)
	})
	register(poolABI.Methods["fee"].ID, func(common.Address) ([]byte, error) {
		return poolABI.Methods["fee"].Outputs.Pack(big.NewInt(3000))
	})
	register(poolABI.Methods["liquidity"].ID, func(common.Address) ([]byte, error) {
		return poolABI.Methods["liquidity"].Outputs.Pack(big.NewInt(123456789))
	})
	register(poolABI.Methods["slot0"].ID, func(common.Address) ([]byte, error) {
		sqrt, _ := new(big.Int).SetString("79228162514264337593543950336", 10)
		return poolABI.Methods["slot0"].Outputs.Pack(sqrt, big.NewInt(-120), uint16(0), uint16(1), uint16(1), uint8(0), true)
	})
	register(erc20.Methods["decimals"].ID, func(to common.Address) ([]byte, error) {
		if to == token1 {
			return erc20.Methods["decimals"].Outputs.Pack(big.NewInt(6))
		}
		return erc20.Methods["decimals"].Outputs.Pack(big.NewInt(18))
	})
	register(erc20.Methods["symbol"].ID, func(to common.Address) ([]byte, error) {
		if to == token1 {
			return erc20.Methods["symbol"].Outputs.Pack("UP")
		}
		return erc20.Methods["symbol"].Outputs.Pack("WETH")
	})
	register(erc20.Methods["name"].ID, func(to common.Address) ([]byte, error) {
		if to == token1 {
			return erc20.Methods["name"].Outputs.Pack("Up Token")
		}
		return erc20.Methods["name"].Outputs.Pack("Wrapped Ether")
	})

	return fake
}

func TestFetchPoolState(t *testing.T) {
	token0 := common.HexToAddress("0x1111111111111111111111111111111111111111")
	token1 := common.HexToAddress("0x2222222222222222222222222222222222222222")
	fake := poolFake(t, token0, token1)

	state, err := FetchPoolState(context.Background(), fake, common.HexToAddress("0xabc0000000000000000000000000000000000000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if state.Token0 != token0 || state.Token1 != token1 {
		t.Fatalf("token order mismatch: %s / %s", state.Token0.Hex(), state.Token1.Hex())
	}
	if state.Fee.Int64() != 3000 {
		t.Fatalf("fee mismatch: %s", state.Fee)
	}
	if state.Tick.Int64() != -120 {
		t.Fatalf("tick mismatch: %s", state.Tick)
	}
	if state.Liquidity.Int64() != 123456789 {
		t.Fatalf("liquidity mismatch: %s", state.Liquidity)
	}
	if state.SqrtPriceX96.Sign() <= 0 {
		t.Fatalf("sqrt price missing")
	}
}

func TestFetchPoolStateFailurePropagates(t *testing.T) {
	fake := &fakeLedger{responses: make(map[[4]byte]func(common.Address) ([]byte, error))}

	_, err := FetchPoolState(context.Background(), fake, common.Address{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, model.ErrRemoteRead) {
		t.Fatalf("expected remote read error, got %v", err)
	}
}

func TestFetchTokenMeta(t *testing.T) {
	token0 := common.HexToAddress("0x1111111111111111111111111111111111111111")
	token1 := common.HexToAddress("0x2222222222222222222222222222222222222222")
	fake := poolFake(t, token0, token1)

	meta, err := FetchTokenMeta(context.Background(), fake, token1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Symbol != "UP" || meta.Name != "Up Token" || meta.Decimals.Int64() != 6 {
		t.Fatalf("meta mismatch: %+v", meta)
	}
}

func TestFetchTokenMetaBytes32Fallback(t *testing.T) {
	token := common.HexToAddress("0x3333333333333333333333333333333333333333")
	erc20, err := ERC20ABI()
	if err != nil {
		t.Fatalf("erc20 abi: %v", err)
	}
	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		t.Fatalf("bytes32 abi: %v", err)
	}

	var symbol [32]byte
	copy(symbol[:], "MKR")
	var name [32]byte
	copy(name[:], "Maker")

	fake := &fakeLedger{responses: make(map[[4]byte]func(common.Address) ([]byte, error))}
	var sel [4]byte
	copy(sel[:], erc20.Methods["decimals"].ID)
	fake.responses[sel] = func(common.Address) ([]byte, error) {
		return erc20.Methods["decimals"].Outputs.Pack(big.NewInt(18))
	}
	copy(sel[:], erc20.Methods["symbol"].ID)
	fake.responses[sel] = func(common.Address) ([]byte, error) {
		return bytes32ABI.Methods["symbol"].Outputs.Pack(symbol)
	}
	copy(sel[:], erc20.Methods["name"].ID)
	fake.responses[sel] = func(common.Address) ([]byte, error) {
		return bytes32ABI.Methods["name"].Outputs.Pack(name)
	}

	meta, err := FetchTokenMeta(context.Background(), fake, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Symbol != "MKR" || meta.Name != "Maker" {
		t.Fatalf("bytes32 fallback mismatch: %+v", meta)
	}
}

// FetchPool fans out its reads; the built pool must not depend on which
// read finishes first.
func TestFetchPoolOrderInvariant(t *testing.T) {
	token0 := common.HexToAddress("0x1111111111111111111111111111111111111111")
	token1 := common.HexToAddress("0x2222222222222222222222222222222222222222")
	fake := poolFake(t, token0, token1)
	fake.jitter = true

	first, err := FetchPool(context.Background(), fake, 8435, common.HexToAddress("0xabc0000000000000000000000000000000000000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := FetchPool(context.Background(), fake, 8435, common.HexToAddress("0xabc0000000000000000000000000000000000000"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("pool differs across fetches: %+v != %+v", first, again)
		}
	}

	if first.Token0.Symbol != "WETH" || first.Token1.Symbol != "UP" {
		t.Fatalf("token order not preserved: %s / %s", first.Token0.Symbol, first.Token1.Symbol)
	}
}
