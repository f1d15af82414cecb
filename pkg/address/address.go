// Package address provides per-chain sanity checks for the addresses the
// payment flow displays. The checks are format-only; they never touch a node.
package address

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

// nearAccountPattern matches named and implicit NEAR accounts.
var nearAccountPattern = regexp.MustCompile(`^[a-z0-9._-]{2,64}$`)

// evmChains are the catalog blockchains that use 0x addresses.
var evmChains = map[string]bool{
	"eth":    true,
	"arb":    true,
	"base":   true,
	"bera":   true,
	"bsc":    true,
	"gnosis": true,
	"pol":    true,
}

// Validate checks that an address is plausible for the given blockchain.
// Unknown blockchains are accepted; the catalog grows faster than this list.
func Validate(blockchain, addr string) error {
	if addr == "" {
		return fmt.Errorf("empty address")
	}

	chain := strings.ToLower(blockchain)
	switch {
	case evmChains[chain]:
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("not a valid %s address: %s", chain, addr)
		}
	case chain == "sol":
		if _, err := solana.PublicKeyFromBase58(addr); err != nil {
			return fmt.Errorf("not a valid solana address: %w", err)
		}
	case chain == "near":
		if !nearAccountPattern.MatchString(addr) {
			return fmt.Errorf("not a valid near account: %s", addr)
		}
	}

	return nil
}
