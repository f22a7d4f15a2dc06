package deploy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baydroid/StarSeeds-Contracts/internal/token"
)

const fullDescriptor = `
deployment: {
	name:           "StarSeeds"
	symbol:         "STAR"
	initial_supply: "1000000"
	decimals:       6
	owner:          "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

	mintable: true
	burnable: true

	max_per_address: "500000000000"
	document_uri:    "https://example.com/starseeds.pdf"

	tax: {
		address: "0xdddddddddddddddddddddddddddddddddddddddd"
		bps:     500
	}
	deflation: {
		bps: 200
	}
}
`

func TestCompileBytes_FullDescriptor(t *testing.T) {
	p, err := CompileBytes([]byte(fullDescriptor), "full.cue")
	require.NoError(t, err)

	assert.Equal(t, "StarSeeds", p.Name)
	assert.Equal(t, "STAR", p.Symbol)
	assert.Equal(t, "1000000", p.InitialSupply.Dec())
	assert.Equal(t, uint8(6), p.Decimals)
	assert.Equal(t, token.Address("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), p.Owner)

	assert.True(t, p.Mintable)
	assert.True(t, p.Burnable)
	assert.True(t, p.MaxAmountSet)
	assert.Equal(t, "500000000000", p.MaxPerAddress.Dec())
	assert.True(t, p.DocumentURIAllowed)
	assert.Equal(t, "https://example.com/starseeds.pdf", p.DocumentURI)
	assert.True(t, p.Taxable)
	assert.Equal(t, token.Address("0xdddddddddddddddddddddddddddddddddddddddd"), p.TaxAddress)
	assert.Equal(t, uint64(500), p.TaxBPS)
	assert.True(t, p.Deflationary)
	assert.Equal(t, uint64(200), p.DeflationBPS)

	require.NoError(t, token.ValidateParams(p))
}

func TestCompileBytes_MinimalDescriptor(t *testing.T) {
	src := `
deployment: {
	name:           "Plain"
	symbol:         "PLN"
	initial_supply: "42"
	owner:          "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
}
`
	p, err := CompileBytes([]byte(src), "minimal.cue")
	require.NoError(t, err)

	assert.Equal(t, uint8(0), p.Decimals)
	assert.False(t, p.Mintable)
	assert.False(t, p.Burnable)
	assert.False(t, p.MaxAmountSet)
	assert.False(t, p.DocumentURIAllowed)
	assert.False(t, p.Taxable)
	assert.False(t, p.Deflationary)
}

func TestCompileBytes_MissingDeploymentStruct(t *testing.T) {
	_, err := CompileBytes([]byte(`name: "X"`), "bad.cue")

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "deployment", ce.Field)
}

func TestCompileBytes_MissingRequiredFields(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		field string
	}{
		{
			name:  "no name",
			src:   `deployment: {symbol: "X", initial_supply: "1", owner: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}`,
			field: "name",
		},
		{
			name:  "no symbol",
			src:   `deployment: {name: "X", initial_supply: "1", owner: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}`,
			field: "symbol",
		},
		{
			name:  "no supply",
			src:   `deployment: {name: "X", symbol: "X", owner: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}`,
			field: "initial_supply",
		},
		{
			name:  "no owner",
			src:   `deployment: {name: "X", symbol: "X", initial_supply: "1"}`,
			field: "owner",
		},
		{
			name:  "tax without bps",
			src:   `deployment: {name: "X", symbol: "X", initial_supply: "1", owner: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", tax: {address: "0xdddddddddddddddddddddddddddddddddddddddd"}}`,
			field: "bps",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CompileBytes([]byte(tc.src), "missing.cue")

			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tc.field, ce.Field)
		})
	}
}

func TestCompileBytes_AmountMustBeString(t *testing.T) {
	src := `deployment: {name: "X", symbol: "X", initial_supply: 1000, owner: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}`

	_, err := CompileBytes([]byte(src), "intamount.cue")

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "initial_supply", ce.Field)
}

func TestCompileBytes_BadAmountString(t *testing.T) {
	src := `deployment: {name: "X", symbol: "X", initial_supply: "12.5", owner: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}`

	_, err := CompileBytes([]byte(src), "badamount.cue")

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "initial_supply", ce.Field)
}

func TestCompileBytes_BadOwnerAddress(t *testing.T) {
	src := `deployment: {name: "X", symbol: "X", initial_supply: "1", owner: "0x123"}`

	_, err := CompileBytes([]byte(src), "badowner.cue")

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "owner", ce.Field)
}

func TestCompileBytes_NegativeBPS(t *testing.T) {
	src := `deployment: {name: "X", symbol: "X", initial_supply: "1", owner: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", tax: {address: "0xdddddddddddddddddddddddddddddddddddddddd", bps: -1}}`

	_, err := CompileBytes([]byte(src), "negbps.cue")

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "bps", ce.Field)
}

func TestCompileBytes_SyntaxErrorHasPosition(t *testing.T) {
	_, err := CompileBytes([]byte("deployment: {name: }"), "syntax.cue")
	require.Error(t, err)

	var ce *CompileError
	if assert.ErrorAs(t, err, &ce) {
		assert.True(t, ce.Pos.IsValid(), "syntax errors should carry a source position")
	}
}

func TestCompileBytes_OwnerIsLowercased(t *testing.T) {
	src := `deployment: {name: "X", symbol: "X", initial_supply: "1", owner: "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"}`

	p, err := CompileBytes([]byte(src), "upper.cue")
	require.NoError(t, err)
	assert.Equal(t, token.Address("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), p.Owner)
}
