package token

import "github.com/holiman/uint256"

// Config is the write-once deployment configuration: identity, decimals,
// and the six capability flags. Fields are unexported and have no setters;
// a Config is created at deployment (or reloaded from ledger metadata) and
// never mutated afterwards.
type Config struct {
	name     string
	symbol   string
	decimals uint8

	mintable           bool
	burnable           bool
	documentURIAllowed bool
	maxAmountSet       bool
	taxable            bool
	deflationary       bool
}

// Name returns the token name.
func (c Config) Name() string { return c.name }

// Symbol returns the token symbol.
func (c Config) Symbol() string { return c.symbol }

// Decimals returns the scaling exponent applied to the initial supply.
func (c Config) Decimals() uint8 { return c.decimals }

// Mintable reports whether new tokens can be minted after deployment.
func (c Config) Mintable() bool { return c.mintable }

// Burnable reports whether the owner can burn tokens.
func (c Config) Burnable() bool { return c.burnable }

// DocumentURIAllowed reports whether the document URI can be updated.
func (c Config) DocumentURIAllowed() bool { return c.documentURIAllowed }

// MaxAmountSet reports whether the per-holder balance cap is enforced.
func (c Config) MaxAmountSet() bool { return c.maxAmountSet }

// Taxable reports whether transfers divert a tax to the tax address.
func (c Config) Taxable() bool { return c.taxable }

// Deflationary reports whether transfers burn a deflation share.
func (c Config) Deflationary() bool { return c.deflationary }

// Params carries raw constructor inputs. Everything is validated by
// ValidateParams before any state is written.
type Params struct {
	Name   string
	Symbol string

	// InitialSupply is the pre-scaling supply; the deployed supply is
	// InitialSupply × 10^Decimals. Nil means zero.
	InitialSupply *uint256.Int
	Decimals      uint8

	Owner Address

	Mintable           bool
	Burnable           bool
	DocumentURIAllowed bool
	MaxAmountSet       bool
	Taxable            bool
	Deflationary       bool

	// MaxPerAddress is required (nonzero) when MaxAmountSet.
	MaxPerAddress *uint256.Int

	// DocumentURI is the initial document URI; meaningful only when
	// DocumentURIAllowed.
	DocumentURI string

	// TaxAddress and TaxBPS are meaningful only when Taxable.
	TaxAddress Address
	TaxBPS     uint64

	// DeflationBPS is meaningful only when Deflationary.
	DeflationBPS uint64
}

func (p Params) config() Config {
	return Config{
		name:               p.Name,
		symbol:             p.Symbol,
		decimals:           p.Decimals,
		mintable:           p.Mintable,
		burnable:           p.Burnable,
		documentURIAllowed: p.DocumentURIAllowed,
		maxAmountSet:       p.MaxAmountSet,
		taxable:            p.Taxable,
		deflationary:       p.Deflationary,
	}
}
