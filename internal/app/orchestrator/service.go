// Package orchestrator runs the satch use cases end to end: derive, read, lay out,
// sign, submit and optionally confirm and re-read.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"satch-client/internal/app/address"
	"satch-client/internal/app/codec"
	"satch-client/internal/app/gateway"
	"satch-client/internal/app/ledgererr"
	"satch-client/internal/app/records"
	"satch-client/internal/app/schema"
	"satch-client/internal/app/sequence"
	"satch-client/internal/app/signer"
	"satch-client/internal/app/txbuild"
	"satch-client/pkg/logger"

	"github.com/gagliardetto/solana-go"
)

const DefaultConflictRetries = 2

type Options struct {
	// Confirm waits for commitment and re-reads the written record.
	Confirm bool
	// ConflictRetries bounds how many times a review is re-allocated after losing a race.
	ConflictRetries int
}

// Journal records every submission so unknown outcomes can be reconciled later.
// Begin runs before the transaction is sent; Complete records what came back.
type Journal interface {
	Begin(ctx context.Context, useCase string, target solana.PublicKey) (string, error)
	Complete(ctx context.Context, id string, sig solana.Signature, confirmed bool, outcome error) error
}

type Service struct {
	Gateway   gateway.Gateway
	Deriver   address.Deriver
	Codec     *codec.Codec
	Allocator *sequence.Allocator
	Journal   Journal
	Options   Options
	Logger    *logger.Logger
}

func NewService(gw gateway.Gateway, programID solana.PublicKey, opts Options) *Service {
	deriver := address.NewDeriver(programID)
	return &Service{
		Gateway:   gw,
		Deriver:   deriver,
		Codec:     codec.Default,
		Allocator: sequence.NewAllocator(gw, deriver),
		Options:   opts,
		Logger:    logger.Default(),
	}
}

func (s *Service) WithJournal(j Journal) *Service {
	s.Journal = j
	return s
}

// Submission describes what a use case wrote.
type Submission struct {
	JournalID string           `json:"journal_id,omitempty"`
	Target    solana.PublicKey `json:"target"`
	Signature solana.Signature `json:"signature"`
	Confirmed bool             `json:"confirmed"`
}

type PlatformResult struct {
	Submission
	Platform *records.Platform `json:"platform,omitempty"`
}

type DriverResult struct {
	Submission
	PlateMapping solana.PublicKey       `json:"plate_mapping"`
	Profile      *records.DriverProfile `json:"profile,omitempty"`
}

type ReviewResult struct {
	Submission
	Index    uint64          `json:"index"`
	Attempts int             `json:"attempts"`
	Review   *records.Review `json:"review,omitempty"`
}

// RegisterPlatform creates the platform record owned by authority, who also pays.
func (s *Service) RegisterPlatform(ctx context.Context, authority signer.Signer, name string) (*PlatformResult, error) {
	target, _, err := s.Deriver.Platform(authority.PublicKey())
	if err != nil {
		return nil, err
	}
	payload, err := s.Codec.EncodeRequest(schema.RequestRegisterPlatform, codec.Args{"name": name})
	if err != nil {
		return nil, err
	}
	ix, err := txbuild.Instruction(s.Deriver.ProgramID, schema.RequestRegisterPlatform, map[string]solana.PublicKey{
		schema.AccountPlatform:  target,
		schema.AccountAuthority: authority.PublicKey(),
	}, payload)
	if err != nil {
		return nil, err
	}

	sub, err := s.send(ctx, schema.RequestRegisterPlatform, target, ix, authority)
	if sub == nil {
		return nil, err
	}
	result := &PlatformResult{Submission: *sub}
	if err != nil {
		return result, err
	}
	if sub.Confirmed {
		result.Platform, err = s.Platform(ctx, target)
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

// RegisterDriver creates a driver profile and its plate mapping under the platform
// owned by authority. The driver co-signs so nobody can register a profile for them.
func (s *Service) RegisterDriver(ctx context.Context, authority, driver signer.Signer, name, plate string) (*DriverResult, error) {
	platformAddr, _, err := s.Deriver.Platform(authority.PublicKey())
	if err != nil {
		return nil, err
	}
	if _, err := s.Platform(ctx, platformAddr); err != nil {
		return nil, fmt.Errorf("platform of %s: %w", authority.PublicKey(), err)
	}

	target, _, err := s.Deriver.Driver(driver.PublicKey())
	if err != nil {
		return nil, err
	}
	plateAddr, _, err := s.Deriver.Plate(plate)
	if err != nil {
		return nil, err
	}
	payload, err := s.Codec.EncodeRequest(schema.RequestRegisterDriver, codec.Args{"name": name, "license_plate": plate})
	if err != nil {
		return nil, err
	}
	ix, err := txbuild.Instruction(s.Deriver.ProgramID, schema.RequestRegisterDriver, map[string]solana.PublicKey{
		schema.AccountDriver:          target,
		schema.AccountPlateMapping:    plateAddr,
		schema.AccountDriverAuthority: driver.PublicKey(),
		schema.AccountPlatform:        platformAddr,
		schema.AccountAuthority:       authority.PublicKey(),
	}, payload)
	if err != nil {
		return nil, err
	}

	sub, err := s.send(ctx, schema.RequestRegisterDriver, target, ix, authority, driver)
	if sub == nil {
		return nil, err
	}
	result := &DriverResult{Submission: *sub, PlateMapping: plateAddr}
	if err != nil {
		return result, err
	}
	if sub.Confirmed {
		result.Profile, err = s.DriverProfile(ctx, target)
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

// LeaveReview appends a review to the driver profile at profileAddr. Losing the race
// for a slot re-reads the counter and tries again, up to ConflictRetries times.
func (s *Service) LeaveReview(ctx context.Context, reviewer signer.Signer, profileAddr solana.PublicKey, rating uint8, messageHash string) (*ReviewResult, error) {
	args := codec.Args{"rating": rating, "message_hash": messageHash}

	for attempt := 1; ; attempt++ {
		alloc, err := s.Allocator.NextAppend(ctx, profileAddr, args)
		if err != nil {
			return nil, err
		}
		ix, err := txbuild.Instruction(s.Deriver.ProgramID, schema.RequestLeaveReview, map[string]solana.PublicKey{
			schema.AccountReview:   alloc.Target,
			schema.AccountDriver:   profileAddr,
			schema.AccountReviewer: reviewer.PublicKey(),
		}, alloc.Payload)
		if err != nil {
			return nil, err
		}

		sub, err := s.send(ctx, schema.RequestLeaveReview, alloc.Target, ix, reviewer)
		err = sequence.ClassifySubmitError(err)
		if errors.Is(err, ledgererr.ErrConflict) && attempt <= s.Options.ConflictRetries {
			s.Logger.Warnf("Review slot %d of %s was taken, retrying (%d/%d)", alloc.Index, profileAddr, attempt, s.Options.ConflictRetries)
			continue
		}
		if sub == nil {
			return nil, err
		}
		result := &ReviewResult{Submission: *sub, Index: alloc.Index, Attempts: attempt}
		if err != nil {
			return result, err
		}
		if sub.Confirmed {
			result.Review, err = s.Review(ctx, alloc.Target)
			if err != nil {
				return result, err
			}
		}
		return result, nil
	}
}

// send signs and submits one instruction. Nothing reaches the ledger once ctx is done
// before the submit, and the returned Submission is nil until something was sent.
// After the submit a lost answer is ErrUnknownOutcome and the Submission keeps the
// signature the payer produced, so the journal can still look it up.
func (s *Service) send(ctx context.Context, useCase string, target solana.PublicKey, ix solana.Instruction, payer signer.Signer, cosigners ...signer.Signer) (*Submission, error) {
	tx, err := txbuild.Transaction(ctx, s.Gateway, payer.PublicKey(), ix)
	if err != nil {
		return nil, err
	}
	if err := signer.SignTransaction(ctx, tx, append([]signer.Signer{payer}, cosigners...)...); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ledgererr.ErrGateway, err)
	}

	sub := &Submission{Target: target, Signature: tx.Signatures[0]}
	if s.Journal != nil {
		sub.JournalID, err = s.Journal.Begin(ctx, useCase, target)
		if err != nil {
			s.Logger.Errorf(err, "Unable to journal %s for %s", useCase, target)
		}
	}

	sig, err := s.Gateway.Submit(ctx, tx)
	if sig != (solana.Signature{}) {
		sub.Signature = sig
	}
	if err == nil && s.Options.Confirm {
		err = s.Gateway.Confirm(ctx, sub.Signature)
		sub.Confirmed = err == nil
	}
	s.complete(ctx, sub, err)

	if err != nil {
		s.Logger.Errorf(err, "%s for %s failed", useCase, target)
		return sub, err
	}
	s.Logger.Infof("%s for %s submitted with signature %s", useCase, target, sub.Signature)
	return sub, nil
}

func (s *Service) complete(ctx context.Context, sub *Submission, outcome error) {
	if s.Journal == nil || sub.JournalID == "" {
		return
	}
	if err := s.Journal.Complete(context.WithoutCancel(ctx), sub.JournalID, sub.Signature, sub.Confirmed, outcome); err != nil {
		s.Logger.Errorf(err, "Unable to complete journal entry %s", sub.JournalID)
	}
}
