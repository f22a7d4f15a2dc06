package token

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baydroid/StarSeeds-Contracts/internal/journal"
	"github.com/baydroid/StarSeeds-Contracts/internal/ledger"
)

func openTestLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, err := ledger.Open(filepath.Join(t.TempDir(), "token.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func deployTestToken(t *testing.T, p Params) (*Token, *ledger.Ledger) {
	t.Helper()
	l := openTestLedger(t)
	tok, err := Deploy(context.Background(), l, p.Owner, p, nil)
	require.NoError(t, err)
	return tok, l
}

func balance(t *testing.T, tok *Token, addr Address) string {
	t.Helper()
	b, err := tok.BalanceOf(context.Background(), addr)
	require.NoError(t, err)
	return b.Dec()
}

func supply(t *testing.T, tok *Token) string {
	t.Helper()
	s, err := tok.TotalSupply(context.Background())
	require.NoError(t, err)
	return s.Dec()
}

func TestDeploy_SeedsOwnerBalance(t *testing.T) {
	p := validParams()
	p.InitialSupply = uint256.NewInt(1000)
	p.Decimals = 2
	tok, _ := deployTestToken(t, p)

	assert.Equal(t, "100000", balance(t, tok, testAlice))
	assert.Equal(t, "100000", supply(t, tok))
	assert.Equal(t, testAlice, tok.Owner())
}

func TestDeploy_RejectsInvalidParams(t *testing.T) {
	l := openTestLedger(t)

	p := validParams()
	p.Decimals = 19
	_, err := Deploy(context.Background(), l, p.Owner, p, nil)
	assert.True(t, IsCode(err, ErrCodeInvalidDecimals))

	deployed, derr := l.Deployed(context.Background())
	require.NoError(t, derr)
	assert.False(t, deployed, "failed deploy must not write anything")
}

func TestDeploy_TwiceRejected(t *testing.T) {
	p := validParams()
	_, l := deployTestToken(t, p)

	_, err := Deploy(context.Background(), l, p.Owner, p, nil)
	assert.True(t, ledger.IsAlreadyDeployed(err))
}

func TestDeploy_DeployerDistinctFromOwner(t *testing.T) {
	l := openTestLedger(t)
	p := validParams()
	p.Owner = testBob

	tok, err := Deploy(context.Background(), l, testAlice, p, nil)
	require.NoError(t, err)

	assert.Equal(t, testBob, tok.Owner())

	events, err := tok.Journal(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, journal.KindDeployed, events[0].Kind)
	assert.Equal(t, journal.KindOwnershipTransferred, events[1].Kind)
	assert.Equal(t, testBob.String(), events[1].Fields["new_owner"])
}

func TestOpen_ReloadsConfig(t *testing.T) {
	p := validParams()
	p.Mintable = true
	p.MaxAmountSet = true
	p.MaxPerAddress = uint256.NewInt(500000)
	p.Taxable = true
	p.TaxAddress = testTreasury
	p.TaxBPS = 500
	p.Deflationary = true
	p.DeflationBPS = 200
	p.DocumentURIAllowed = true
	p.DocumentURI = "https://example.com/doc"
	_, l := deployTestToken(t, p)

	tok, err := Open(context.Background(), l, nil)
	require.NoError(t, err)

	cfg := tok.Config()
	assert.Equal(t, "StarSeeds", cfg.Name())
	assert.Equal(t, "STAR", cfg.Symbol())
	assert.Equal(t, uint8(6), cfg.Decimals())
	assert.True(t, cfg.Mintable())
	assert.False(t, cfg.Burnable())
	assert.True(t, cfg.MaxAmountSet())
	assert.True(t, cfg.Taxable())
	assert.True(t, cfg.Deflationary())
	assert.Equal(t, "500000", tok.MaxPerAddress().Dec())

	taxAddr, taxBPS := tok.TaxConfig()
	assert.Equal(t, testTreasury, taxAddr)
	assert.Equal(t, uint64(500), taxBPS)
	assert.Equal(t, uint64(200), tok.DeflationBPS())
	assert.Equal(t, "https://example.com/doc", tok.DocumentURI())
}

func TestOpen_EmptyLedger(t *testing.T) {
	l := openTestLedger(t)

	_, err := Open(context.Background(), l, nil)
	assert.True(t, ledger.IsNotDeployed(err))
}

func TestTransfer_PlainWhenNoFees(t *testing.T) {
	p := validParams()
	p.InitialSupply = uint256.NewInt(1)
	p.Decimals = 3
	tok, _ := deployTestToken(t, p)
	ctx := context.Background()

	require.NoError(t, tok.Transfer(ctx, testAlice, testBob, uint256.NewInt(400)))

	assert.Equal(t, "600", balance(t, tok, testAlice))
	assert.Equal(t, "400", balance(t, tok, testBob))
	assert.Equal(t, "1000", supply(t, tok))
}

func TestTransfer_TaxedAndDeflationary(t *testing.T) {
	p := validParams()
	p.InitialSupply = uint256.NewInt(1000000)
	p.Decimals = 0
	p.Taxable = true
	p.TaxAddress = testTreasury
	p.TaxBPS = 500
	p.Deflationary = true
	p.DeflationBPS = 200
	tok, _ := deployTestToken(t, p)
	ctx := context.Background()

	require.NoError(t, tok.Transfer(ctx, testAlice, testBob, uint256.NewInt(1000)))

	assert.Equal(t, "999000", balance(t, tok, testAlice), "sender pays the full amount")
	assert.Equal(t, "930", balance(t, tok, testBob))
	assert.Equal(t, "50", balance(t, tok, testTreasury))
	assert.Equal(t, "999980", supply(t, tok), "deflation reduces total supply")

	events, err := tok.Journal(ctx)
	require.NoError(t, err)
	last := events[len(events)-1]
	assert.Equal(t, journal.KindTransfer, last.Kind)
	assert.Equal(t, "1000", last.Fields["amount"])
	assert.Equal(t, "50", last.Fields["tax"])
	assert.Equal(t, "20", last.Fields["deflation"])
	assert.Equal(t, "930", last.Fields["net"])
}

func TestTransfer_FromTaxSinkUntaxed(t *testing.T) {
	p := validParams()
	p.InitialSupply = uint256.NewInt(1000000)
	p.Decimals = 0
	p.Owner = testTreasury
	p.Taxable = true
	p.TaxAddress = testTreasury
	p.TaxBPS = 500
	tok, _ := deployTestToken(t, p)
	ctx := context.Background()

	require.NoError(t, tok.Transfer(ctx, testTreasury, testBob, uint256.NewInt(1000)))

	assert.Equal(t, "1000", balance(t, tok, testBob), "sink transfers carry no tax")
}

func TestTransfer_InsufficientBalanceRollsBack(t *testing.T) {
	p := validParams()
	p.InitialSupply = uint256.NewInt(100)
	p.Decimals = 0
	tok, _ := deployTestToken(t, p)
	ctx := context.Background()

	err := tok.Transfer(ctx, testAlice, testBob, uint256.NewInt(101))
	assert.True(t, ledger.IsInsufficientBalance(err))

	assert.Equal(t, "100", balance(t, tok, testAlice))
	assert.Equal(t, "0", balance(t, tok, testBob))
}

func TestTransfer_InvalidRecipient(t *testing.T) {
	tok, _ := deployTestToken(t, validParams())
	ctx := context.Background()

	err := tok.Transfer(ctx, testAlice, ZeroAddress, uint256.NewInt(1))
	assert.True(t, IsCode(err, ErrCodeInvalidAddress))

	err = tok.Transfer(ctx, testAlice, Address("0xZZ"), uint256.NewInt(1))
	assert.True(t, IsCode(err, ErrCodeInvalidAddress))
}

func TestApproveAndTransferFrom(t *testing.T) {
	p := validParams()
	p.InitialSupply = uint256.NewInt(10000)
	p.Decimals = 0
	tok, _ := deployTestToken(t, p)
	ctx := context.Background()

	require.NoError(t, tok.Approve(ctx, testAlice, testCarol, uint256.NewInt(1500)))
	require.NoError(t, tok.TransferFrom(ctx, testCarol, testAlice, testBob, uint256.NewInt(1000)))

	assert.Equal(t, "9000", balance(t, tok, testAlice))
	assert.Equal(t, "1000", balance(t, tok, testBob))

	remaining, err := tok.Allowance(ctx, testAlice, testCarol)
	require.NoError(t, err)
	assert.Equal(t, "500", remaining.Dec())
}

func TestTransferFrom_AllowanceSpentByFullAmount(t *testing.T) {
	p := validParams()
	p.InitialSupply = uint256.NewInt(10000)
	p.Decimals = 0
	p.Taxable = true
	p.TaxAddress = testTreasury
	p.TaxBPS = 500
	tok, _ := deployTestToken(t, p)
	ctx := context.Background()

	require.NoError(t, tok.Approve(ctx, testAlice, testCarol, uint256.NewInt(1000)))
	require.NoError(t, tok.TransferFrom(ctx, testCarol, testAlice, testBob, uint256.NewInt(1000)))

	assert.Equal(t, "950", balance(t, tok, testBob), "recipient gets the net amount")

	remaining, err := tok.Allowance(ctx, testAlice, testCarol)
	require.NoError(t, err)
	assert.Equal(t, "0", remaining.Dec(), "allowance is spent by the full requested amount")
}

func TestTransferFrom_InsufficientAllowance(t *testing.T) {
	p := validParams()
	p.InitialSupply = uint256.NewInt(10000)
	p.Decimals = 0
	tok, _ := deployTestToken(t, p)
	ctx := context.Background()

	require.NoError(t, tok.Approve(ctx, testAlice, testCarol, uint256.NewInt(500)))

	err := tok.TransferFrom(ctx, testCarol, testAlice, testBob, uint256.NewInt(1000))
	assert.True(t, ledger.IsInsufficientAllowance(err))

	assert.Equal(t, "10000", balance(t, tok, testAlice))
	assert.Equal(t, "0", balance(t, tok, testBob))
}

func TestApprove_Overwrites(t *testing.T) {
	tok, _ := deployTestToken(t, validParams())
	ctx := context.Background()

	require.NoError(t, tok.Approve(ctx, testAlice, testCarol, uint256.NewInt(1000)))
	require.NoError(t, tok.Approve(ctx, testAlice, testCarol, uint256.NewInt(10)))

	a, err := tok.Allowance(ctx, testAlice, testCarol)
	require.NoError(t, err)
	assert.Equal(t, "10", a.Dec())
}

func TestMint(t *testing.T) {
	p := validParams()
	p.InitialSupply = uint256.NewInt(1000)
	p.Decimals = 0
	p.Mintable = true
	tok, _ := deployTestToken(t, p)
	ctx := context.Background()

	require.NoError(t, tok.Mint(ctx, testAlice, testBob, uint256.NewInt(500)))

	assert.Equal(t, "500", balance(t, tok, testBob))
	assert.Equal(t, "1500", supply(t, tok))
}

func TestMint_Disabled(t *testing.T) {
	tok, _ := deployTestToken(t, validParams())

	err := tok.Mint(context.Background(), testAlice, testBob, uint256.NewInt(1))
	assert.True(t, IsCode(err, ErrCodeMintingNotEnabled))
}

func TestMint_NotOwner(t *testing.T) {
	p := validParams()
	p.Mintable = true
	tok, _ := deployTestToken(t, p)

	err := tok.Mint(context.Background(), testBob, testBob, uint256.NewInt(1))
	assert.True(t, IsNotOwner(err))
}

func TestBurn(t *testing.T) {
	p := validParams()
	p.InitialSupply = uint256.NewInt(1000)
	p.Decimals = 0
	p.Burnable = true
	tok, _ := deployTestToken(t, p)
	ctx := context.Background()

	require.NoError(t, tok.Burn(ctx, testAlice, uint256.NewInt(300)))

	assert.Equal(t, "700", balance(t, tok, testAlice))
	assert.Equal(t, "700", supply(t, tok))
}

func TestBurn_Disabled(t *testing.T) {
	tok, _ := deployTestToken(t, validParams())

	err := tok.Burn(context.Background(), testAlice, uint256.NewInt(1))
	assert.True(t, IsCode(err, ErrCodeBurningNotEnabled))
}

func TestBurn_ExceedsBalance(t *testing.T) {
	p := validParams()
	p.InitialSupply = uint256.NewInt(100)
	p.Decimals = 0
	p.Burnable = true
	tok, _ := deployTestToken(t, p)

	err := tok.Burn(context.Background(), testAlice, uint256.NewInt(101))
	assert.True(t, ledger.IsInsufficientBalance(err))
	assert.Equal(t, "100", supply(t, tok))
}

func TestSetTaxConfig(t *testing.T) {
	p := validParams()
	p.Taxable = true
	p.TaxAddress = testTreasury
	p.TaxBPS = 500
	tok, l := deployTestToken(t, p)
	ctx := context.Background()

	require.NoError(t, tok.SetTaxConfig(ctx, testAlice, testCarol, 100))

	taxAddr, taxBPS := tok.TaxConfig()
	assert.Equal(t, testCarol, taxAddr)
	assert.Equal(t, uint64(100), taxBPS)

	// Survives a reload.
	reopened, err := Open(ctx, l, nil)
	require.NoError(t, err)
	taxAddr, taxBPS = reopened.TaxConfig()
	assert.Equal(t, testCarol, taxAddr)
	assert.Equal(t, uint64(100), taxBPS)
}

func TestSetTaxConfig_Disabled(t *testing.T) {
	tok, _ := deployTestToken(t, validParams())

	err := tok.SetTaxConfig(context.Background(), testAlice, testTreasury, 100)
	assert.True(t, IsCode(err, ErrCodeTaxNotEnabled))
}

func TestSetTaxConfig_RevalidatesBounds(t *testing.T) {
	p := validParams()
	p.Taxable = true
	p.TaxAddress = testTreasury
	p.TaxBPS = 500
	tok, _ := deployTestToken(t, p)
	ctx := context.Background()

	err := tok.SetTaxConfig(ctx, testAlice, testTreasury, 5001)
	assert.True(t, IsCode(err, ErrCodeInvalidTaxBPS))

	err = tok.SetTaxConfig(ctx, testAlice, ZeroAddress, 100)
	assert.True(t, IsCode(err, ErrCodeInvalidTaxAddress))

	_, taxBPS := tok.TaxConfig()
	assert.Equal(t, uint64(500), taxBPS, "failed update leaves config untouched")
}

func TestSetDeflationConfig(t *testing.T) {
	p := validParams()
	p.Deflationary = true
	p.DeflationBPS = 200
	tok, _ := deployTestToken(t, p)
	ctx := context.Background()

	require.NoError(t, tok.SetDeflationConfig(ctx, testAlice, 50))
	assert.Equal(t, uint64(50), tok.DeflationBPS())

	err := tok.SetDeflationConfig(ctx, testAlice, 5001)
	assert.True(t, IsCode(err, ErrCodeInvalidDeflationBPS))
}

func TestSetDeflationConfig_Disabled(t *testing.T) {
	tok, _ := deployTestToken(t, validParams())

	err := tok.SetDeflationConfig(context.Background(), testAlice, 100)
	assert.True(t, IsCode(err, ErrCodeDeflationNotEnabled))
}

func TestSetDocumentURI(t *testing.T) {
	p := validParams()
	p.DocumentURIAllowed = true
	p.DocumentURI = "https://example.com/v1"
	tok, _ := deployTestToken(t, p)
	ctx := context.Background()

	require.NoError(t, tok.SetDocumentURI(ctx, testAlice, "https://example.com/v2"))
	assert.Equal(t, "https://example.com/v2", tok.DocumentURI())
}

func TestSetDocumentURI_Disabled(t *testing.T) {
	tok, _ := deployTestToken(t, validParams())

	err := tok.SetDocumentURI(context.Background(), testAlice, "https://example.com")
	assert.True(t, IsCode(err, ErrCodeDocURINotAllowed))
}

func TestTransferOwnership(t *testing.T) {
	p := validParams()
	p.Mintable = true
	tok, _ := deployTestToken(t, p)
	ctx := context.Background()

	require.NoError(t, tok.TransferOwnership(ctx, testAlice, testBob))
	assert.Equal(t, testBob, tok.Owner())

	err := tok.Mint(ctx, testAlice, testAlice, uint256.NewInt(1))
	assert.True(t, IsNotOwner(err), "previous owner loses privileges")

	require.NoError(t, tok.Mint(ctx, testBob, testBob, uint256.NewInt(1)))
}

func TestTransferOwnership_NotOwner(t *testing.T) {
	tok, _ := deployTestToken(t, validParams())

	err := tok.TransferOwnership(context.Background(), testBob, testCarol)
	assert.True(t, IsNotOwner(err))
}

func TestRenounceOwnership(t *testing.T) {
	p := validParams()
	p.Mintable = true
	tok, _ := deployTestToken(t, p)
	ctx := context.Background()

	require.NoError(t, tok.RenounceOwnership(ctx, testAlice))
	assert.Equal(t, ZeroAddress, tok.Owner())

	err := tok.Mint(ctx, testAlice, testAlice, uint256.NewInt(1))
	assert.True(t, IsNotOwner(err), "renounced token has no privileged caller")
}

func TestJournal_OpIDsAreFixedWhenInjected(t *testing.T) {
	l := openTestLedger(t)
	p := validParams()
	gen := journal.NewFixedGenerator("op-1", "op-2", "op-3")

	tok, err := Deploy(context.Background(), l, p.Owner, p, gen)
	require.NoError(t, err)
	require.NoError(t, tok.Transfer(context.Background(), testAlice, testBob, uint256.NewInt(1)))

	events, err := tok.Journal(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "op-1", events[0].OpID)
	assert.Equal(t, "op-2", events[1].OpID)
}

func TestConservation_AcrossMixedOperations(t *testing.T) {
	p := validParams()
	p.InitialSupply = uint256.NewInt(1000000)
	p.Decimals = 0
	p.Mintable = true
	p.Burnable = true
	p.Taxable = true
	p.TaxAddress = testTreasury
	p.TaxBPS = 300
	p.Deflationary = true
	p.DeflationBPS = 100
	tok, l := deployTestToken(t, p)
	ctx := context.Background()

	require.NoError(t, tok.Transfer(ctx, testAlice, testBob, uint256.NewInt(12345)))
	require.NoError(t, tok.Mint(ctx, testAlice, testCarol, uint256.NewInt(777)))
	require.NoError(t, tok.Transfer(ctx, testBob, testCarol, uint256.NewInt(1000)))
	require.NoError(t, tok.Burn(ctx, testAlice, uint256.NewInt(500)))

	balances, err := l.Balances(ctx)
	require.NoError(t, err)
	sum := new(uint256.Int)
	for _, b := range balances {
		sum.Add(sum, b)
	}

	total, err := tok.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, total.Dec(), sum.Dec(), "sum of balances must equal total supply")
}
