package model

import "math/big"

// Quote holds raw smallest-unit amounts for one quoted exchange.
type Quote struct {
	AmountIn  *big.Int
	AmountOut *big.Int
}

// Trade is an unchecked exact-input trade record. It trusts the quote that
// produced it instead of re-deriving the output from pool price.
type Trade struct {
	Pool     Pool
	TokenIn  Token
	TokenOut Token
	Quote    Quote
}
