package ledgertest

import (
	"fmt"

	"satch-client/internal/app/ledgererr"
	"satch-client/internal/app/records"
	"satch-client/internal/app/schema"

	"github.com/near/borsh-go"
)

// Stored account bodies, laid out the way the program's account structs serialize.

type platformAccount struct {
	Authority   [32]byte
	Name        string
	Verified    bool
	DriverCount uint64
}

type driverAccount struct {
	Authority    [32]byte
	Platform     [32]byte
	Name         string
	LicensePlate string
	RatingSum    uint64
	ReviewCount  uint64
}

type plateAccount struct {
	LicensePlate string
	DriverPDA    [32]byte
}

type reviewAccount struct {
	Driver      [32]byte
	Reviewer    [32]byte
	Rating      uint8
	MessageHash string
}

type account struct {
	kind  string
	space int
	body  interface{}
	raw   []byte
}

// bytes renders discriminator || borsh(body), zero padded to the allocated space.
func (a *account) bytes() ([]byte, error) {
	if a.raw != nil {
		return append([]byte{}, a.raw...), nil
	}
	body, err := borsh.Serialize(a.value())
	if err != nil {
		return nil, err
	}
	disc := schema.AccountDiscriminator(a.kind)
	out := append(disc[:], body...)
	if len(out) < a.space {
		out = append(out, make([]byte, a.space-len(out))...)
	}
	return out, nil
}

// value dereferences the body; borsh treats pointers as optional values.
func (a *account) value() interface{} {
	switch b := a.body.(type) {
	case *platformAccount:
		return *b
	case *driverAccount:
		return *b
	case *plateAccount:
		return *b
	case *reviewAccount:
		return *b
	}
	return a.body
}

func (a *account) clone() *account {
	c := *a
	switch b := a.body.(type) {
	case *platformAccount:
		v := *b
		c.body = &v
	case *driverAccount:
		v := *b
		c.body = &v
	case *plateAccount:
		v := *b
		c.body = &v
	case *reviewAccount:
		v := *b
		c.body = &v
	}
	return &c
}

func fixedSpace(kind string) int {
	rs, _ := schema.Satch.Record(kind)
	return rs.Space()
}

func reviewSpace(messageHash string) int {
	rs, _ := schema.Satch.Record(schema.RecordReview)
	return rs.MinSize() + len(messageHash)
}

func fromRecord(record interface{}) (*account, error) {
	switch r := record.(type) {
	case records.Platform:
		return &account{
			kind:  schema.RecordPlatform,
			space: fixedSpace(schema.RecordPlatform),
			body: &platformAccount{
				Authority:   r.Authority,
				Name:        r.Name,
				Verified:    r.Verified,
				DriverCount: r.DriverCount,
			},
		}, nil
	case records.DriverProfile:
		return &account{
			kind:  schema.RecordDriverProfile,
			space: fixedSpace(schema.RecordDriverProfile),
			body: &driverAccount{
				Authority:    r.Authority,
				Platform:     r.Platform,
				Name:         r.Name,
				LicensePlate: r.LicensePlate,
				RatingSum:    r.RatingSum,
				ReviewCount:  r.ReviewCount,
			},
		}, nil
	case records.LicensePlateMapping:
		return &account{
			kind:  schema.RecordLicensePlateMapping,
			space: fixedSpace(schema.RecordLicensePlateMapping),
			body:  &plateAccount{LicensePlate: r.LicensePlate, DriverPDA: r.DriverPDA},
		}, nil
	case records.Review:
		return &account{
			kind:  schema.RecordReview,
			space: reviewSpace(r.MessageHash),
			body: &reviewAccount{
				Driver:      r.Driver,
				Reviewer:    r.Reviewer,
				Rating:      r.Rating,
				MessageHash: r.MessageHash,
			},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %T is not a satch record", ledgererr.ErrEncode, record)
	}
}
