// Package deploy compiles CUE deployment descriptors into token
// construction parameters.
//
// A descriptor is a single CUE file with a top-level deployment struct:
//
//	deployment: {
//		name:           "StarSeeds"
//		symbol:         "STAR"
//		initial_supply: "1000000"
//		decimals:       6
//		owner:          "0xaaaa..."
//		mintable:       true
//		max_per_address: "500000"
//		tax: {address: "0xdddd...", bps: 500}
//		deflation: {bps: 200}
//	}
//
// Capability flags derive from presence: a tax block makes the token
// taxable, a deflation block makes it deflationary, max_per_address
// enables the cap, document_uri enables URI updates. The explicit
// mintable and burnable booleans default to false.
package deploy

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/holiman/uint256"

	tok "github.com/baydroid/StarSeeds-Contracts/internal/token"
)

// CompileError is a descriptor error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileFile loads a CUE deployment descriptor from disk.
func CompileFile(path string) (tok.Params, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return tok.Params{}, fmt.Errorf("read deployment descriptor: %w", err)
	}
	return CompileBytes(src, path)
}

// CompileBytes compiles descriptor source. filename is used in error
// positions only.
func CompileBytes(src []byte, filename string) (tok.Params, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return tok.Params{}, formatCUEError(err)
	}

	dep := v.LookupPath(cue.ParsePath("deployment"))
	if !dep.Exists() {
		return tok.Params{}, &CompileError{
			Field:   "deployment",
			Message: "top-level deployment struct is required",
			Pos:     v.Pos(),
		}
	}
	return CompileDeployment(dep)
}

// CompileDeployment parses the deployment struct itself into Params. The
// result still goes through token.ValidateParams at deploy time; this
// layer only deals with shape and representation.
func CompileDeployment(v cue.Value) (tok.Params, error) {
	if err := v.Err(); err != nil {
		return tok.Params{}, formatCUEError(err)
	}

	var p tok.Params
	var err error

	if p.Name, err = requiredString(v, "name"); err != nil {
		return tok.Params{}, err
	}
	if p.Symbol, err = requiredString(v, "symbol"); err != nil {
		return tok.Params{}, err
	}

	if p.InitialSupply, err = parseAmountField(v, "initial_supply", true); err != nil {
		return tok.Params{}, err
	}

	decVal := v.LookupPath(cue.ParsePath("decimals"))
	if decVal.Exists() {
		dec, derr := decVal.Int64()
		if derr != nil {
			return tok.Params{}, formatCUEError(derr)
		}
		if dec < 0 || dec > 255 {
			return tok.Params{}, &CompileError{
				Field:   "decimals",
				Message: fmt.Sprintf("decimals %d out of range", dec),
				Pos:     decVal.Pos(),
			}
		}
		p.Decimals = uint8(dec)
	}

	if p.Owner, err = requiredAddress(v, "owner"); err != nil {
		return tok.Params{}, err
	}

	if p.Mintable, err = optionalBool(v, "mintable"); err != nil {
		return tok.Params{}, err
	}
	if p.Burnable, err = optionalBool(v, "burnable"); err != nil {
		return tok.Params{}, err
	}

	capAmount, err := parseAmountField(v, "max_per_address", false)
	if err != nil {
		return tok.Params{}, err
	}
	if capAmount != nil {
		p.MaxAmountSet = true
		p.MaxPerAddress = capAmount
	}

	uriVal := v.LookupPath(cue.ParsePath("document_uri"))
	if uriVal.Exists() {
		uri, uerr := uriVal.String()
		if uerr != nil {
			return tok.Params{}, formatCUEError(uerr)
		}
		p.DocumentURIAllowed = true
		p.DocumentURI = uri
	}

	taxVal := v.LookupPath(cue.ParsePath("tax"))
	if taxVal.Exists() {
		p.Taxable = true
		if p.TaxAddress, err = requiredAddress(taxVal, "address"); err != nil {
			return tok.Params{}, err
		}
		if p.TaxBPS, err = requiredBPS(taxVal, "bps"); err != nil {
			return tok.Params{}, err
		}
	}

	deflVal := v.LookupPath(cue.ParsePath("deflation"))
	if deflVal.Exists() {
		p.Deflationary = true
		if p.DeflationBPS, err = requiredBPS(deflVal, "bps"); err != nil {
			return tok.Params{}, err
		}
	}

	return p, nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	if s == "" {
		return "", &CompileError{
			Field:   field,
			Message: field + " must be non-empty",
			Pos:     fv.Pos(),
		}
	}
	return s, nil
}

func requiredAddress(v cue.Value, field string) (tok.Address, error) {
	s, err := requiredString(v, field)
	if err != nil {
		return tok.ZeroAddress, err
	}
	addr, err := tok.ParseAddress(s)
	if err != nil {
		return tok.ZeroAddress, &CompileError{
			Field:   field,
			Message: err.Error(),
			Pos:     v.LookupPath(cue.ParsePath(field)).Pos(),
		}
	}
	return addr, nil
}

func requiredBPS(v cue.Value, field string) (uint64, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	bps, err := fv.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	if bps < 0 {
		return 0, &CompileError{
			Field:   field,
			Message: "basis points must not be negative",
			Pos:     fv.Pos(),
		}
	}
	return uint64(bps), nil
}

// parseAmountField reads a decimal-string amount. Amounts are strings in
// the descriptor so values beyond int64 survive; floats never appear.
func parseAmountField(v cue.Value, field string, required bool) (*uint256.Int, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		if required {
			return nil, &CompileError{
				Field:   field,
				Message: field + " is required",
				Pos:     v.Pos(),
			}
		}
		return nil, nil
	}

	s, err := fv.String()
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: "amounts must be decimal strings",
			Pos:     fv.Pos(),
		}
	}

	amount := new(uint256.Int)
	if err := amount.SetFromDecimal(s); err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("invalid decimal amount %q", s),
			Pos:     fv.Pos(),
		}
	}
	return amount, nil
}

func optionalBool(v cue.Value, field string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
