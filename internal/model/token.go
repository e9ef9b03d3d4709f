package model

import "github.com/ethereum/go-ethereum/common"

// Token identifies a fungible asset on a chain. Immutable once built.
type Token struct {
	ChainID  uint64
	Address  common.Address
	Decimals uint8
	Symbol   string
	Name     string
}

// Is reports whether the token lives at the given address.
func (t Token) Is(address common.Address) bool {
	return t.Address == address
}
