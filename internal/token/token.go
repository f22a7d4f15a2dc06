package token

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/holiman/uint256"

	"github.com/baydroid/StarSeeds-Contracts/internal/journal"
	"github.com/baydroid/StarSeeds-Contracts/internal/ledger"
)

// Token is the fee/cap overlay around a base ledger.
//
// All mutating operations are serialized behind a single mutex; each
// operation evaluates every precondition before touching the ledger and
// then commits all its effects in one ledger transaction.
type Token struct {
	mu     sync.Mutex
	ledger *ledger.Ledger
	ids    journal.OpIDGenerator
	cfg    Config

	// Mutable configuration, guarded by mu. Updated only after the
	// corresponding ledger write commits.
	owner         Address
	maxPerAddress *uint256.Int
	taxAddress    Address
	taxBPS        uint64
	deflationBPS  uint64
	documentURI   string
}

// Deploy validates params, writes the token into an empty ledger, mints
// the scaled initial supply to the owner, and hands off ownership when the
// deployer differs from the designated owner. Nothing is written unless
// every validation passes.
func Deploy(ctx context.Context, l *ledger.Ledger, deployer Address, p Params, ids journal.OpIDGenerator) (*Token, error) {
	if ids == nil {
		ids = journal.UUIDv7Generator{}
	}

	if deployer.IsZero() || !deployer.Valid() {
		return nil, &Error{
			Code:    ErrCodeInvalidAddress,
			Message: "deployer address is zero or malformed",
			Address: deployer,
		}
	}
	if err := ValidateParams(p); err != nil {
		return nil, err
	}

	supply, err := scaledSupply(p.InitialSupply, p.Decimals)
	if err != nil {
		return nil, err
	}

	meta := deployMeta(p)
	events := []journal.Event{deployEvent(ids.Generate(), p, supply)}
	if deployer != p.Owner {
		events = append(events, journal.NewEvent(
			journal.KindOwnershipTransferred, ids.Generate(), map[string]any{
				"previous_owner": deployer.String(),
				"new_owner":      p.Owner.String(),
			}))
	}

	if err := l.ApplyDeploy(ctx, meta, p.Owner.String(), supply, events); err != nil {
		return nil, err
	}

	t := &Token{
		ledger:        l,
		ids:           ids,
		cfg:           p.config(),
		owner:         p.Owner,
		maxPerAddress: p.MaxPerAddress,
		taxAddress:    p.TaxAddress,
		taxBPS:        p.TaxBPS,
		deflationBPS:  p.DeflationBPS,
		documentURI:   p.DocumentURI,
	}
	slog.Info("token deployed",
		"name", p.Name,
		"symbol", p.Symbol,
		"owner", p.Owner.String(),
		"supply", supply.Dec(),
	)
	return t, nil
}

// Open reloads a deployed token from ledger metadata.
func Open(ctx context.Context, l *ledger.Ledger, ids journal.OpIDGenerator) (*Token, error) {
	if ids == nil {
		ids = journal.UUIDv7Generator{}
	}

	meta, err := l.MetaMap(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := meta[ledger.MetaName]; !ok {
		return nil, &ledger.Error{
			Code:    ledger.ErrCodeNotDeployed,
			Message: "no deployed token in database",
		}
	}

	t := &Token{ledger: l, ids: ids}
	if err := t.loadMeta(meta); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Token) loadMeta(meta map[string]string) error {
	decimals, err := strconv.ParseUint(meta[ledger.MetaDecimals], 10, 8)
	if err != nil {
		return fmt.Errorf("parse stored decimals: %w", err)
	}

	t.cfg = Config{
		name:               meta[ledger.MetaName],
		symbol:             meta[ledger.MetaSymbol],
		decimals:           uint8(decimals),
		mintable:           meta[ledger.MetaFlagMintable] == "1",
		burnable:           meta[ledger.MetaFlagBurnable] == "1",
		documentURIAllowed: meta[ledger.MetaFlagDocumentURI] == "1",
		maxAmountSet:       meta[ledger.MetaFlagMaxAmountSet] == "1",
		taxable:            meta[ledger.MetaFlagTaxable] == "1",
		deflationary:       meta[ledger.MetaFlagDeflationary] == "1",
	}
	t.owner = Address(meta[ledger.MetaOwner])
	t.documentURI = meta[ledger.MetaDocumentURI]

	if t.cfg.maxAmountSet {
		cap := new(uint256.Int)
		if err := cap.SetFromDecimal(meta[ledger.MetaMaxPerAddr]); err != nil {
			return fmt.Errorf("parse stored cap: %w", err)
		}
		t.maxPerAddress = cap
	}
	if t.cfg.taxable {
		t.taxAddress = Address(meta[ledger.MetaTaxAddress])
		bps, err := strconv.ParseUint(meta[ledger.MetaTaxBPS], 10, 64)
		if err != nil {
			return fmt.Errorf("parse stored tax bps: %w", err)
		}
		t.taxBPS = bps
	}
	if t.cfg.deflationary {
		bps, err := strconv.ParseUint(meta[ledger.MetaDeflationBPS], 10, 64)
		if err != nil {
			return fmt.Errorf("parse stored deflation bps: %w", err)
		}
		t.deflationBPS = bps
	}
	return nil
}

// Config returns the write-once capability configuration.
func (t *Token) Config() Config {
	return t.cfg
}

// Owner returns the current owner.
func (t *Token) Owner() Address {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.owner
}

// MaxPerAddress returns the per-holder cap, or nil when the cap capability
// is disabled.
func (t *Token) MaxPerAddress() *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.maxPerAddress == nil {
		return nil
	}
	return new(uint256.Int).Set(t.maxPerAddress)
}

// TaxConfig returns the current tax sink and rate.
func (t *Token) TaxConfig() (Address, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.taxAddress, t.taxBPS
}

// DeflationBPS returns the current deflation rate.
func (t *Token) DeflationBPS() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deflationBPS
}

// DocumentURI returns the current document URI.
func (t *Token) DocumentURI() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.documentURI
}

// BalanceOf returns the balance of an account.
func (t *Token) BalanceOf(ctx context.Context, account Address) (*uint256.Int, error) {
	return t.ledger.BalanceOf(ctx, account.String())
}

// Allowance returns the amount spender may move on behalf of owner.
func (t *Token) Allowance(ctx context.Context, owner, spender Address) (*uint256.Int, error) {
	return t.ledger.Allowance(ctx, owner.String(), spender.String())
}

// TotalSupply returns the current total supply.
func (t *Token) TotalSupply(ctx context.Context) (*uint256.Int, error) {
	return t.ledger.TotalSupply(ctx)
}

// Journal returns the full event journal.
func (t *Token) Journal(ctx context.Context) ([]journal.Event, error) {
	return t.ledger.Journal(ctx)
}

// Transfer moves amount from the caller to recipient, applying tax and
// deflation deductions and the destination cap.
func (t *Token) Transfer(ctx context.Context, caller, to Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transfer(ctx, caller, to, amount, nil)
}

// TransferFrom moves amount from holder to recipient on behalf of the
// caller, spending the caller's allowance by the FULL requested amount.
func (t *Token) TransferFrom(ctx context.Context, caller, from, to Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if from.IsZero() || !from.Valid() {
		return &Error{
			Code:    ErrCodeInvalidAddress,
			Message: "holder address is zero or malformed",
			Address: from,
		}
	}
	spend := &ledger.AllowanceSpend{
		Owner:   from.String(),
		Spender: caller.String(),
		Amount:  amount,
	}
	return t.transfer(ctx, from, to, amount, spend)
}

// transfer runs the overlay sequence for one transfer: deductions, cap
// checks, then one atomic ledger unit. Callers hold t.mu.
func (t *Token) transfer(ctx context.Context, from, to Address, amount *uint256.Int, spend *ledger.AllowanceSpend) error {
	if to.IsZero() || !to.Valid() {
		return &Error{
			Code:    ErrCodeInvalidAddress,
			Message: "recipient address is zero or malformed",
			Address: to,
		}
	}
	if amount == nil {
		amount = uint256.NewInt(0)
	}

	fe := t.feeEngine()
	tax := fe.ComputeTax(from, amount)
	defl := fe.ComputeDeflation(amount)

	net := new(uint256.Int).Sub(amount, tax)
	net.Sub(net, defl)

	// The cap applies per credited account. When the recipient IS the tax
	// sink the two credits land on one balance and are checked as a sum.
	if to == t.taxAddress {
		combined := new(uint256.Int).Add(net, tax)
		if err := t.checkCap(ctx, to, combined); err != nil {
			return err
		}
	} else {
		if err := t.checkCap(ctx, to, net); err != nil {
			return err
		}
		if !tax.IsZero() {
			if err := t.checkCap(ctx, t.taxAddress, tax); err != nil {
				return err
			}
		}
	}

	fields := map[string]any{
		"from":      from.String(),
		"to":        to.String(),
		"amount":    amount.Dec(),
		"tax":       tax.Dec(),
		"deflation": defl.Dec(),
		"net":       net.Dec(),
	}
	if spend != nil {
		fields["spender"] = spend.Spender
	}

	return t.ledger.ApplyTransfer(ctx, ledger.TransferApply{
		From:      from.String(),
		To:        to.String(),
		Net:       net,
		TaxTo:     t.taxAddress.String(),
		Tax:       tax,
		Deflation: defl,
		Spend:     spend,
	}, journal.NewEvent(journal.KindTransfer, t.ids.Generate(), fields))
}

// Approve sets the caller's allowance for spender. Approvals overwrite.
func (t *Token) Approve(ctx context.Context, caller, spender Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if spender.IsZero() || !spender.Valid() {
		return &Error{
			Code:    ErrCodeInvalidAddress,
			Message: "spender address is zero or malformed",
			Address: spender,
		}
	}
	if amount == nil {
		amount = uint256.NewInt(0)
	}

	return t.ledger.ApplyApprove(ctx, caller.String(), spender.String(), amount,
		journal.NewEvent(journal.KindApprove, t.ids.Generate(), map[string]any{
			"owner":   caller.String(),
			"spender": spender.String(),
			"amount":  amount.Dec(),
		}))
}

// Mint creates amount new tokens for recipient. Owner-only; requires the
// mintable capability; the destination cap applies to the raw amount.
// Mint is never taxed or deflated.
func (t *Token) Mint(ctx context.Context, caller, to Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.cfg.Mintable() {
		return newDisabled(ErrCodeMintingNotEnabled, "minting")
	}
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if to.IsZero() || !to.Valid() {
		return &Error{
			Code:    ErrCodeInvalidAddress,
			Message: "mint recipient address is zero or malformed",
			Address: to,
		}
	}
	if amount == nil {
		amount = uint256.NewInt(0)
	}
	if err := t.checkCap(ctx, to, amount); err != nil {
		return err
	}

	return t.ledger.ApplyMint(ctx, to.String(), amount,
		journal.NewEvent(journal.KindMint, t.ids.Generate(), map[string]any{
			"to":     to.String(),
			"amount": amount.Dec(),
		}))
}

// Burn destroys amount from the caller's own balance. Owner-only; requires
// the burnable capability.
func (t *Token) Burn(ctx context.Context, caller Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.cfg.Burnable() {
		return newDisabled(ErrCodeBurningNotEnabled, "burning")
	}
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if amount == nil {
		amount = uint256.NewInt(0)
	}

	return t.ledger.ApplyBurn(ctx, caller.String(), amount,
		journal.NewEvent(journal.KindBurn, t.ids.Generate(), map[string]any{
			"from":   caller.String(),
			"amount": amount.Dec(),
		}))
}

// SetTaxConfig updates the tax sink and rate. Owner-only; requires the
// taxable capability; re-runs the construction bounds.
func (t *Token) SetTaxConfig(ctx context.Context, caller, taxAddress Address, taxBPS uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.cfg.Taxable() {
		return newDisabled(ErrCodeTaxNotEnabled, "tax")
	}
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if err := validateTaxConfig(taxAddress, taxBPS); err != nil {
		return err
	}

	err := t.ledger.ApplyMetaUpdate(ctx, map[string]string{
		ledger.MetaTaxAddress: taxAddress.String(),
		ledger.MetaTaxBPS:     strconv.FormatUint(taxBPS, 10),
	}, journal.NewEvent(journal.KindTaxConfigChanged, t.ids.Generate(), map[string]any{
		"tax_address": taxAddress.String(),
		"tax_bps":     int64(taxBPS),
	}))
	if err != nil {
		return err
	}

	t.taxAddress = taxAddress
	t.taxBPS = taxBPS
	return nil
}

// SetDeflationConfig updates the deflation rate. Owner-only; requires the
// deflationary capability; re-runs the construction bounds.
func (t *Token) SetDeflationConfig(ctx context.Context, caller Address, deflationBPS uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.cfg.Deflationary() {
		return newDisabled(ErrCodeDeflationNotEnabled, "deflation")
	}
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if err := validateDeflationBPS(deflationBPS); err != nil {
		return err
	}

	err := t.ledger.ApplyMetaUpdate(ctx, map[string]string{
		ledger.MetaDeflationBPS: strconv.FormatUint(deflationBPS, 10),
	}, journal.NewEvent(journal.KindDeflationConfigChanged, t.ids.Generate(), map[string]any{
		"deflation_bps": int64(deflationBPS),
	}))
	if err != nil {
		return err
	}

	t.deflationBPS = deflationBPS
	return nil
}

// SetDocumentURI updates the document URI. Owner-only; requires the
// document URI capability.
func (t *Token) SetDocumentURI(ctx context.Context, caller Address, uri string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.cfg.DocumentURIAllowed() {
		return newDisabled(ErrCodeDocURINotAllowed, "document URI")
	}
	if err := t.requireOwner(caller); err != nil {
		return err
	}

	err := t.ledger.ApplyMetaUpdate(ctx, map[string]string{
		ledger.MetaDocumentURI: uri,
	}, journal.NewEvent(journal.KindDocumentURIChanged, t.ids.Generate(), map[string]any{
		"document_uri": uri,
	}))
	if err != nil {
		return err
	}

	t.documentURI = uri
	return nil
}

// TransferOwnership hands the token to a new owner. Owner-only. Use
// RenounceOwnership to give up ownership entirely.
func (t *Token) TransferOwnership(ctx context.Context, caller, newOwner Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if newOwner.IsZero() || !newOwner.Valid() {
		return &Error{
			Code:    ErrCodeInvalidAddress,
			Message: "new owner address is zero or malformed",
			Address: newOwner,
		}
	}
	return t.setOwner(ctx, caller, newOwner)
}

// RenounceOwnership permanently gives up ownership: the owner becomes the
// zero address and every privileged operation fails from then on.
func (t *Token) RenounceOwnership(ctx context.Context, caller Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOwner(caller); err != nil {
		return err
	}
	return t.setOwner(ctx, caller, ZeroAddress)
}

func (t *Token) setOwner(ctx context.Context, previous, next Address) error {
	err := t.ledger.ApplyMetaUpdate(ctx, map[string]string{
		ledger.MetaOwner: next.String(),
	}, journal.NewEvent(journal.KindOwnershipTransferred, t.ids.Generate(), map[string]any{
		"previous_owner": previous.String(),
		"new_owner":      next.String(),
	}))
	if err != nil {
		return err
	}

	t.owner = next
	return nil
}

// requireOwner gates privileged operations. Callers hold t.mu.
func (t *Token) requireOwner(caller Address) error {
	if t.owner.IsZero() || caller != t.owner {
		return newNotOwner(caller)
	}
	return nil
}

// feeEngine snapshots the current fee configuration. Callers hold t.mu.
func (t *Token) feeEngine() FeeEngine {
	return FeeEngine{
		Taxable:      t.cfg.Taxable(),
		TaxAddress:   t.taxAddress,
		TaxBPS:       t.taxBPS,
		Deflationary: t.cfg.Deflationary(),
		DeflationBPS: t.deflationBPS,
	}
}

func deployMeta(p Params) map[string]string {
	meta := map[string]string{
		ledger.MetaName:     p.Name,
		ledger.MetaSymbol:   p.Symbol,
		ledger.MetaDecimals: strconv.FormatUint(uint64(p.Decimals), 10),
		ledger.MetaOwner:    p.Owner.String(),

		ledger.MetaFlagMintable:     flag(p.Mintable),
		ledger.MetaFlagBurnable:     flag(p.Burnable),
		ledger.MetaFlagDocumentURI:  flag(p.DocumentURIAllowed),
		ledger.MetaFlagMaxAmountSet: flag(p.MaxAmountSet),
		ledger.MetaFlagTaxable:      flag(p.Taxable),
		ledger.MetaFlagDeflationary: flag(p.Deflationary),
	}
	if p.MaxAmountSet {
		meta[ledger.MetaMaxPerAddr] = p.MaxPerAddress.Dec()
	}
	if p.DocumentURIAllowed {
		meta[ledger.MetaDocumentURI] = p.DocumentURI
	}
	if p.Taxable {
		meta[ledger.MetaTaxAddress] = p.TaxAddress.String()
		meta[ledger.MetaTaxBPS] = strconv.FormatUint(p.TaxBPS, 10)
	}
	if p.Deflationary {
		meta[ledger.MetaDeflationBPS] = strconv.FormatUint(p.DeflationBPS, 10)
	}
	return meta
}

func deployEvent(opID string, p Params, supply *uint256.Int) journal.Event {
	fields := map[string]any{
		"name":           p.Name,
		"symbol":         p.Symbol,
		"decimals":       int64(p.Decimals),
		"owner":          p.Owner.String(),
		"initial_supply": supply.Dec(),
		"mintable":       p.Mintable,
		"burnable":       p.Burnable,
		"document_uri":   p.DocumentURIAllowed,
		"max_amount_set": p.MaxAmountSet,
		"taxable":        p.Taxable,
		"deflationary":   p.Deflationary,
	}
	if p.MaxAmountSet {
		fields["max_per_address"] = p.MaxPerAddress.Dec()
	}
	if p.Taxable {
		fields["tax_address"] = p.TaxAddress.String()
		fields["tax_bps"] = int64(p.TaxBPS)
	}
	if p.Deflationary {
		fields["deflation_bps"] = int64(p.DeflationBPS)
	}
	return journal.NewEvent(journal.KindDeployed, opID, fields)
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
