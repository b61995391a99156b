package ledgertest

import (
	"fmt"

	"satch-client/internal/app/address"
	"satch-client/internal/app/codec"
	"satch-client/internal/app/gateway"
	"satch-client/internal/app/schema"

	"github.com/gagliardetto/solana-go"
)

// Anchor framework errors raised by account validation.
const (
	anchorErrAccountNotInitialized = 3012
	anchorErrAccountNotSigner      = 3010
)

type instructionContext struct {
	tx       *solana.Transaction
	accounts map[string]solana.PublicKey
	args     codec.Args
	state    map[solana.PublicKey]*account
}

func (ic *instructionContext) signed(slot string) bool {
	return ic.tx.Message.IsSigner(ic.accounts[slot])
}

func (l *Ledger) execute(ic *instructionContext, name string) error {
	switch name {
	case schema.RequestRegisterPlatform:
		return l.registerPlatform(ic)
	case schema.RequestRegisterDriver:
		return l.registerDriver(ic)
	case schema.RequestLeaveReview:
		return l.leaveReview(ic)
	default:
		return programError(101, "InstructionFallbackNotFound")
	}
}

func (l *Ledger) registerPlatform(ic *instructionContext) error {
	authority := ic.accounts[schema.AccountAuthority]
	target := ic.accounts[schema.AccountPlatform]

	if !ic.signed(schema.AccountAuthority) {
		return programError(anchorErrAccountNotSigner, "AccountNotSigner")
	}
	if err := l.checkSeeds(target, address.PlatformSeeds(authority)); err != nil {
		return err
	}
	if err := initTarget(ic.state, target); err != nil {
		return err
	}

	ic.state[target] = &account{
		kind:  schema.RecordPlatform,
		space: fixedSpace(schema.RecordPlatform),
		body: &platformAccount{
			Authority: authority,
			Name:      ic.args["name"].(string),
		},
	}
	return nil
}

func (l *Ledger) registerDriver(ic *instructionContext) error {
	driverAuthority := ic.accounts[schema.AccountDriverAuthority]
	authority := ic.accounts[schema.AccountAuthority]
	driverTarget := ic.accounts[schema.AccountDriver]
	plateTarget := ic.accounts[schema.AccountPlateMapping]
	platformAddr := ic.accounts[schema.AccountPlatform]
	plate := ic.args["license_plate"].(string)

	if err := l.checkSeeds(driverTarget, address.DriverSeeds(driverAuthority)); err != nil {
		return err
	}
	if err := l.checkSeeds(plateTarget, address.PlateSeeds(plate)); err != nil {
		return err
	}
	if !ic.signed(schema.AccountDriverAuthority) || !ic.signed(schema.AccountAuthority) {
		return programError(anchorErrAccountNotSigner, "AccountNotSigner")
	}

	platformAcc, ok := ic.state[platformAddr]
	if !ok || platformAcc.kind != schema.RecordPlatform {
		return programError(anchorErrAccountNotInitialized, "AccountNotInitialized")
	}
	platform := platformAcc.body.(*platformAccount)
	if solana.PublicKeyFromBytes(platform.Authority[:]) != authority {
		return programError(gateway.SatchErrInvalidPlatformAuthority, "InvalidPlatformAuthority")
	}

	if err := initTarget(ic.state, driverTarget); err != nil {
		return err
	}
	if err := initTarget(ic.state, plateTarget); err != nil {
		return err
	}

	ic.state[driverTarget] = &account{
		kind:  schema.RecordDriverProfile,
		space: fixedSpace(schema.RecordDriverProfile),
		body: &driverAccount{
			Authority:    driverAuthority,
			Platform:     platformAddr,
			Name:         ic.args["name"].(string),
			LicensePlate: plate,
		},
	}
	ic.state[plateTarget] = &account{
		kind:  schema.RecordLicensePlateMapping,
		space: fixedSpace(schema.RecordLicensePlateMapping),
		body:  &plateAccount{LicensePlate: plate, DriverPDA: driverTarget},
	}
	platform.DriverCount++
	return nil
}

func (l *Ledger) leaveReview(ic *instructionContext) error {
	driverAddr := ic.accounts[schema.AccountDriver]
	reviewTarget := ic.accounts[schema.AccountReview]
	reviewer := ic.accounts[schema.AccountReviewer]
	rating := ic.args["rating"].(uint8)
	messageHash := ic.args["message_hash"].(string)

	driverAcc, ok := ic.state[driverAddr]
	if !ok || driverAcc.kind != schema.RecordDriverProfile {
		return programError(anchorErrAccountNotInitialized, "AccountNotInitialized")
	}
	driver := driverAcc.body.(*driverAccount)

	if err := l.checkSeeds(reviewTarget, address.ReviewSeeds(driverAddr, driver.ReviewCount)); err != nil {
		return err
	}
	if !ic.signed(schema.AccountReviewer) {
		return programError(anchorErrAccountNotSigner, "AccountNotSigner")
	}
	if err := initTarget(ic.state, reviewTarget); err != nil {
		return err
	}
	if rating < 1 || rating > 5 {
		return programError(gateway.SatchErrRatingOutOfRange, "RatingOutOfRange")
	}

	ic.state[reviewTarget] = &account{
		kind:  schema.RecordReview,
		space: reviewSpace(messageHash),
		body: &reviewAccount{
			Driver:      driverAddr,
			Reviewer:    reviewer,
			Rating:      rating,
			MessageHash: messageHash,
		},
	}
	driver.RatingSum += uint64(rating)
	driver.ReviewCount++
	return nil
}

func (l *Ledger) checkSeeds(target solana.PublicKey, seeds [][]byte) error {
	want, _, err := address.Derive(seeds, l.ProgramID)
	if err != nil || !want.Equals(target) {
		return gateway.NewRemoteError(
			"Transaction simulation failed: Error processing Instruction 0: custom program error: 0x7d6",
			nil,
			[]string{
				"Program log: AnchorError caused by account. Error Code: ConstraintSeeds. Error Number: 2006. Error Message: A seeds constraint was violated.",
				"Program log: Left: " + target.String(),
				"Program log: Right: " + want.String(),
			},
		)
	}
	return nil
}

func initTarget(state map[solana.PublicKey]*account, target solana.PublicKey) error {
	if _, exists := state[target]; exists {
		return gateway.NewRemoteError(
			"Transaction simulation failed: Error processing Instruction 0: custom program error: 0x0",
			nil,
			[]string{fmt.Sprintf("Allocate: account Address { address: %s, base: None } already in use", target)},
		)
	}
	return nil
}

func programError(code int64, name string) error {
	return gateway.NewRemoteError(
		fmt.Sprintf("Transaction simulation failed: Error processing Instruction 0: custom program error: 0x%x", code),
		nil,
		[]string{fmt.Sprintf("Program log: AnchorError occurred. Error Code: %s. Error Number: %d.", name, code)},
	)
}
