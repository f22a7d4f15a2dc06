package token

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() Params {
	return Params{
		Name:          "StarSeeds",
		Symbol:        "STAR",
		InitialSupply: uint256.NewInt(1000000),
		Decimals:      6,
		Owner:         testAlice,
	}
}

func TestValidateParams_MinimalConfig(t *testing.T) {
	require.NoError(t, ValidateParams(validParams()))
}

func TestValidateParams_AllCapabilities(t *testing.T) {
	p := validParams()
	p.Mintable = true
	p.Burnable = true
	p.DocumentURIAllowed = true
	p.DocumentURI = "https://example.com/token.pdf"
	p.MaxAmountSet = true
	p.MaxPerAddress = uint256.NewInt(10000)
	p.Taxable = true
	p.TaxAddress = testTreasury
	p.TaxBPS = 500
	p.Deflationary = true
	p.DeflationBPS = 200

	require.NoError(t, ValidateParams(p))
}

func TestValidateParams_DecimalsTooLarge(t *testing.T) {
	p := validParams()
	p.Decimals = 19

	err := ValidateParams(p)
	assert.True(t, IsCode(err, ErrCodeInvalidDecimals))
}

func TestValidateParams_DecimalsAtLimit(t *testing.T) {
	p := validParams()
	p.Decimals = 18

	require.NoError(t, ValidateParams(p))
}

func TestValidateParams_ZeroOwner(t *testing.T) {
	p := validParams()
	p.Owner = ZeroAddress

	err := ValidateParams(p)
	assert.True(t, IsCode(err, ErrCodeInvalidAddress))
}

func TestValidateParams_MalformedOwner(t *testing.T) {
	p := validParams()
	p.Owner = Address("not-an-address")

	err := ValidateParams(p)
	assert.True(t, IsCode(err, ErrCodeInvalidAddress))
}

func TestValidateParams_CapFlagWithoutCap(t *testing.T) {
	p := validParams()
	p.MaxAmountSet = true

	err := ValidateParams(p)
	assert.True(t, IsCode(err, ErrCodeInvalidMaxTokenAmount))
}

func TestValidateParams_CapFlagZeroCap(t *testing.T) {
	p := validParams()
	p.MaxAmountSet = true
	p.MaxPerAddress = uint256.NewInt(0)

	err := ValidateParams(p)
	assert.True(t, IsCode(err, ErrCodeInvalidMaxTokenAmount))
}

func TestValidateParams_CapIgnoredWhenFlagOff(t *testing.T) {
	p := validParams()
	p.MaxPerAddress = uint256.NewInt(0)

	require.NoError(t, ValidateParams(p))
}

func TestValidateParams_TaxBPSTooLarge(t *testing.T) {
	p := validParams()
	p.Taxable = true
	p.TaxAddress = testTreasury
	p.TaxBPS = 5001

	err := ValidateParams(p)
	assert.True(t, IsCode(err, ErrCodeInvalidTaxBPS))
}

func TestValidateParams_TaxBPSAtLimit(t *testing.T) {
	p := validParams()
	p.Taxable = true
	p.TaxAddress = testTreasury
	p.TaxBPS = 5000

	require.NoError(t, ValidateParams(p))
}

func TestValidateParams_ZeroTaxAddress(t *testing.T) {
	p := validParams()
	p.Taxable = true
	p.TaxAddress = ZeroAddress
	p.TaxBPS = 500

	err := ValidateParams(p)
	assert.True(t, IsCode(err, ErrCodeInvalidTaxAddress))
}

func TestValidateParams_DeflationBPSTooLarge(t *testing.T) {
	p := validParams()
	p.Deflationary = true
	p.DeflationBPS = 5001

	err := ValidateParams(p)
	assert.True(t, IsCode(err, ErrCodeInvalidDeflationBPS))
}

func TestScaledSupply(t *testing.T) {
	got, err := scaledSupply(uint256.NewInt(1000), 6)
	require.NoError(t, err)
	assert.Equal(t, "1000000000", got.Dec())
}

func TestScaledSupply_ZeroDecimals(t *testing.T) {
	got, err := scaledSupply(uint256.NewInt(1000), 0)
	require.NoError(t, err)
	assert.Equal(t, "1000", got.Dec())
}

func TestScaledSupply_NilSupply(t *testing.T) {
	got, err := scaledSupply(nil, 6)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestScaledSupply_Overflow(t *testing.T) {
	_, err := scaledSupply(new(uint256.Int).SetAllOne(), 18)
	assert.True(t, IsCode(err, ErrCodeInvalidAmount))
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	require.NoError(t, err)
	assert.Equal(t, testAlice, addr, "addresses are lowercased on parse")

	_, err = ParseAddress("0xabc")
	assert.True(t, IsCode(err, ErrCodeInvalidAddress))

	_, err = ParseAddress("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	assert.True(t, IsCode(err, ErrCodeInvalidAddress), "0x prefix is required")
}
