package orchestrator

import (
	"context"
	"fmt"
	"sort"

	"satch-client/internal/app/gateway"
	"satch-client/internal/app/ledgererr"
	"satch-client/internal/app/records"
	"satch-client/internal/app/schema"

	"github.com/gagliardetto/solana-go"
)

func (s *Service) Platform(ctx context.Context, addr solana.PublicKey) (*records.Platform, error) {
	data, err := s.Gateway.FetchRaw(ctx, addr)
	if err != nil {
		return nil, err
	}
	return records.DecodePlatform(data)
}

func (s *Service) DriverProfile(ctx context.Context, addr solana.PublicKey) (*records.DriverProfile, error) {
	data, err := s.Gateway.FetchRaw(ctx, addr)
	if err != nil {
		return nil, err
	}
	return records.DecodeDriverProfile(data)
}

func (s *Service) Review(ctx context.Context, addr solana.PublicKey) (*records.Review, error) {
	data, err := s.Gateway.FetchRaw(ctx, addr)
	if err != nil {
		return nil, err
	}
	return records.DecodeReview(data)
}

type DriverEntry struct {
	Address       solana.PublicKey       `json:"address"`
	Profile       *records.DriverProfile `json:"profile"`
	AverageRating float64                `json:"average_rating"`
}

func newDriverEntry(addr solana.PublicKey, profile *records.DriverProfile) DriverEntry {
	return DriverEntry{Address: addr, Profile: profile, AverageRating: profile.AverageRating()}
}

// Driver reads the profile registered by driverAuthority.
func (s *Service) Driver(ctx context.Context, driverAuthority solana.PublicKey) (*DriverEntry, error) {
	addr, _, err := s.Deriver.Driver(driverAuthority)
	if err != nil {
		return nil, err
	}
	profile, err := s.DriverProfile(ctx, addr)
	if err != nil {
		return nil, err
	}
	entry := newDriverEntry(addr, profile)
	return &entry, nil
}

// LookupDriver resolves a license plate through its mapping to the driver profile.
func (s *Service) LookupDriver(ctx context.Context, plate string) (*DriverEntry, error) {
	mappingAddr, _, err := s.Deriver.Plate(plate)
	if err != nil {
		return nil, err
	}
	data, err := s.Gateway.FetchRaw(ctx, mappingAddr)
	if err != nil {
		return nil, fmt.Errorf("plate %q: %w", plate, err)
	}
	mapping, err := records.DecodeLicensePlateMapping(data)
	if err != nil {
		return nil, err
	}
	profile, err := s.DriverProfile(ctx, mapping.DriverPDA)
	if err != nil {
		return nil, err
	}
	entry := newDriverEntry(mapping.DriverPDA, profile)
	return &entry, nil
}

// PlatformDrivers scans for every driver profile whose platform field is platformAddr.
func (s *Service) PlatformDrivers(ctx context.Context, platformAddr solana.PublicKey) ([]DriverEntry, error) {
	rs, _ := s.Codec.Registry().Record(schema.RecordDriverProfile)
	offset, ok := rs.Offset("platform")
	if !ok {
		return nil, fmt.Errorf("%w: driver profile platform offset is not fixed", ledgererr.ErrDecode)
	}

	accounts, err := s.Gateway.ListAccounts(ctx, schema.AccountDiscriminator(schema.RecordDriverProfile), gateway.Filter{
		Offset: uint64(offset),
		Bytes:  platformAddr.Bytes(),
	})
	if err != nil {
		return nil, err
	}

	drivers := make([]DriverEntry, 0, len(accounts))
	for _, acc := range accounts {
		profile, err := records.DecodeDriverProfile(acc.Data)
		if err != nil {
			s.Logger.Warnf("Skipping undecodable driver profile %s: %v", acc.Address, err)
			continue
		}
		drivers = append(drivers, newDriverEntry(acc.Address, profile))
	}
	sort.Slice(drivers, func(i, j int) bool {
		return drivers[i].Profile.Name < drivers[j].Profile.Name
	})
	return drivers, nil
}

type ReviewEntry struct {
	Index   uint64           `json:"index"`
	Address solana.PublicKey `json:"address"`
	Review  *records.Review  `json:"review"`
}

// DriverReviews scans for the reviews whose driver field is profileAddr and orders
// them by slot. Accounts outside slots 0..review_count-1 are skipped.
func (s *Service) DriverReviews(ctx context.Context, profileAddr solana.PublicKey) ([]ReviewEntry, error) {
	profile, err := s.DriverProfile(ctx, profileAddr)
	if err != nil {
		return nil, err
	}
	rs, _ := s.Codec.Registry().Record(schema.RecordReview)
	offset, ok := rs.Offset("driver")
	if !ok {
		return nil, fmt.Errorf("%w: review driver offset is not fixed", ledgererr.ErrDecode)
	}

	accounts, err := s.Gateway.ListAccounts(ctx, schema.AccountDiscriminator(schema.RecordReview), gateway.Filter{
		Offset: uint64(offset),
		Bytes:  profileAddr.Bytes(),
	})
	if err != nil {
		return nil, err
	}

	slots := make(map[solana.PublicKey]uint64, profile.ReviewCount)
	for i := uint64(0); i < profile.ReviewCount; i++ {
		addr, _, err := s.Deriver.Review(profileAddr, i)
		if err != nil {
			return nil, err
		}
		slots[addr] = i
	}

	reviews := make([]ReviewEntry, 0, len(accounts))
	for _, acc := range accounts {
		index, ok := slots[acc.Address]
		if !ok {
			s.Logger.Warnf("Skipping review %s outside the slots of %s", acc.Address, profileAddr)
			continue
		}
		review, err := records.DecodeReview(acc.Data)
		if err != nil {
			s.Logger.Warnf("Skipping undecodable review %s: %v", acc.Address, err)
			continue
		}
		reviews = append(reviews, ReviewEntry{Index: index, Address: acc.Address, Review: review})
	}
	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].Index < reviews[j].Index
	})
	return reviews, nil
}

type DumpError struct {
	Address solana.PublicKey `json:"address"`
	Kind    string           `json:"kind"`
	Error   string           `json:"error"`
}

type AccountDump struct {
	Mappings []records.LicensePlateMapping `json:"mappings"`
	Drivers  []DriverEntry                 `json:"drivers"`
	Errors   []DumpError                   `json:"errors"`
}

// DumpAccounts lists every plate mapping and driver profile, reporting the ones that
// fail to decode instead of stopping.
func (s *Service) DumpAccounts(ctx context.Context) (*AccountDump, error) {
	dump := &AccountDump{
		Mappings: []records.LicensePlateMapping{},
		Drivers:  []DriverEntry{},
		Errors:   []DumpError{},
	}

	mappings, err := s.Gateway.ListAccounts(ctx, schema.AccountDiscriminator(schema.RecordLicensePlateMapping))
	if err != nil {
		return nil, err
	}
	for _, acc := range mappings {
		m, err := records.DecodeLicensePlateMapping(acc.Data)
		if err != nil {
			dump.Errors = append(dump.Errors, DumpError{Address: acc.Address, Kind: schema.RecordLicensePlateMapping, Error: err.Error()})
			continue
		}
		dump.Mappings = append(dump.Mappings, *m)
	}

	drivers, err := s.Gateway.ListAccounts(ctx, schema.AccountDiscriminator(schema.RecordDriverProfile))
	if err != nil {
		return nil, err
	}
	for _, acc := range drivers {
		d, err := records.DecodeDriverProfile(acc.Data)
		if err != nil {
			dump.Errors = append(dump.Errors, DumpError{Address: acc.Address, Kind: schema.RecordDriverProfile, Error: err.Error()})
			continue
		}
		dump.Drivers = append(dump.Drivers, newDriverEntry(acc.Address, d))
	}

	sort.Slice(dump.Mappings, func(i, j int) bool {
		return dump.Mappings[i].LicensePlate < dump.Mappings[j].LicensePlate
	})
	sort.Slice(dump.Drivers, func(i, j int) bool {
		return dump.Drivers[i].Profile.LicensePlate < dump.Drivers[j].Profile.LicensePlate
	})
	return dump, nil
}
