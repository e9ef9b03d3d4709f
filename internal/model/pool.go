package model

import "math/big"

// Pool is a priced V3 trading venue between exactly two tokens.
// Token0/Token1 keep the canonical on-chain order; re-sorting them would
// silently flip the price direction.
type Pool struct {
	Token0       Token
	Token1       Token
	Fee          uint32
	SqrtPriceX96 *big.Int
	Liquidity    *big.Int
	Tick         int32
}

// Other returns the pool token paired with the given one.
func (p Pool) Other(t Token) Token {
	if p.Token0.Address == t.Address {
		return p.Token1
	}
	return p.Token0
}

// Has reports whether the token is one of the pool's two sides.
func (p Pool) Has(t Token) bool {
	return p.Token0.Address == t.Address || p.Token1.Address == t.Address
}
