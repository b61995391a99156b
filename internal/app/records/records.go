package records

import (
	"fmt"

	"satch-client/internal/app/codec"
	"satch-client/internal/app/ledgererr"
	"satch-client/internal/app/schema"

	"github.com/gagliardetto/solana-go"
)

type Platform struct {
	Authority   solana.PublicKey `json:"authority"`
	Name        string           `json:"name"`
	Verified    bool             `json:"verified"`
	DriverCount uint64           `json:"driver_count"`
}

type DriverProfile struct {
	Authority    solana.PublicKey `json:"authority"`
	Platform     solana.PublicKey `json:"platform"`
	Name         string           `json:"name"`
	LicensePlate string           `json:"license_plate"`
	RatingSum    uint64           `json:"rating_sum"`
	ReviewCount  uint64           `json:"review_count"`
}

// AverageRating is zero for a driver without reviews.
func (d DriverProfile) AverageRating() float64 {
	if d.ReviewCount == 0 {
		return 0
	}
	return float64(d.RatingSum) / float64(d.ReviewCount)
}

type LicensePlateMapping struct {
	LicensePlate string           `json:"license_plate"`
	DriverPDA    solana.PublicKey `json:"driver_pda"`
}

type Review struct {
	Driver      solana.PublicKey `json:"driver"`
	Reviewer    solana.PublicKey `json:"reviewer"`
	Rating      uint8            `json:"rating"`
	MessageHash string           `json:"message_hash"`
}

// fieldReader collects the first accessor failure so conversions read linearly.
type fieldReader struct {
	rec *codec.Record
	err error
}

func (r *fieldReader) key(name string) solana.PublicKey {
	if r.err != nil {
		return solana.PublicKey{}
	}
	v, err := r.rec.PublicKey(name)
	r.err = err
	return v
}

func (r *fieldReader) text(name string) string {
	if r.err != nil {
		return ""
	}
	v, err := r.rec.String(name)
	r.err = err
	return v
}

func (r *fieldReader) u64(name string) uint64 {
	if r.err != nil {
		return 0
	}
	v, err := r.rec.Uint64(name)
	r.err = err
	return v
}

func (r *fieldReader) u8(name string) uint8 {
	if r.err != nil {
		return 0
	}
	v, err := r.rec.Uint8(name)
	r.err = err
	return v
}

func (r *fieldReader) boolean(name string) bool {
	if r.err != nil {
		return false
	}
	v, err := r.rec.Bool(name)
	r.err = err
	return v
}

func (r *fieldReader) done(kind string) error {
	if r.err != nil {
		return ledgererr.NewDecodeError(kind, 0, "%v", r.err)
	}
	return nil
}

func decode(c *codec.Codec, kind string, data []byte) (*fieldReader, error) {
	rec, err := c.DecodeAccount(kind, data)
	if err != nil {
		return nil, err
	}
	return &fieldReader{rec: rec}, nil
}

func DecodePlatform(data []byte) (*Platform, error) {
	r, err := decode(codec.Default, schema.RecordPlatform, data)
	if err != nil {
		return nil, err
	}
	p := &Platform{
		Authority:   r.key("authority"),
		Name:        r.text("name"),
		Verified:    r.boolean("verified"),
		DriverCount: r.u64("driver_count"),
	}
	if err := r.done(schema.RecordPlatform); err != nil {
		return nil, err
	}
	return p, nil
}

func DecodeDriverProfile(data []byte) (*DriverProfile, error) {
	r, err := decode(codec.Default, schema.RecordDriverProfile, data)
	if err != nil {
		return nil, err
	}
	d := &DriverProfile{
		Authority:    r.key("authority"),
		Platform:     r.key("platform"),
		Name:         r.text("name"),
		LicensePlate: r.text("license_plate"),
		RatingSum:    r.u64("rating_sum"),
		ReviewCount:  r.u64("review_count"),
	}
	if err := r.done(schema.RecordDriverProfile); err != nil {
		return nil, err
	}
	return d, nil
}

func DecodeLicensePlateMapping(data []byte) (*LicensePlateMapping, error) {
	r, err := decode(codec.Default, schema.RecordLicensePlateMapping, data)
	if err != nil {
		return nil, err
	}
	m := &LicensePlateMapping{
		LicensePlate: r.text("license_plate"),
		DriverPDA:    r.key("driver_pda"),
	}
	if err := r.done(schema.RecordLicensePlateMapping); err != nil {
		return nil, err
	}
	return m, nil
}

func DecodeReview(data []byte) (*Review, error) {
	r, err := decode(codec.Default, schema.RecordReview, data)
	if err != nil {
		return nil, err
	}
	rv := &Review{
		Driver:      r.key("driver"),
		Reviewer:    r.key("reviewer"),
		Rating:      r.u8("rating"),
		MessageHash: r.text("message_hash"),
	}
	if err := r.done(schema.RecordReview); err != nil {
		return nil, err
	}
	return rv, nil
}

// Fields returns the codec form of the record, as stored by the program.
func (p Platform) Fields() codec.Args {
	return codec.Args{
		"authority":    p.Authority,
		"name":         p.Name,
		"verified":     p.Verified,
		"driver_count": p.DriverCount,
	}
}

func (d DriverProfile) Fields() codec.Args {
	return codec.Args{
		"authority":     d.Authority,
		"platform":      d.Platform,
		"name":          d.Name,
		"license_plate": d.LicensePlate,
		"rating_sum":    d.RatingSum,
		"review_count":  d.ReviewCount,
	}
}

func (m LicensePlateMapping) Fields() codec.Args {
	return codec.Args{
		"license_plate": m.LicensePlate,
		"driver_pda":    m.DriverPDA,
	}
}

func (rv Review) Fields() codec.Args {
	return codec.Args{
		"driver":       rv.Driver,
		"reviewer":     rv.Reviewer,
		"rating":       rv.Rating,
		"message_hash": rv.MessageHash,
	}
}

// Encode lays out any of the typed records in stored form.
func Encode(record interface{}) ([]byte, error) {
	switch r := record.(type) {
	case Platform:
		return codec.Default.EncodeAccount(schema.RecordPlatform, r.Fields())
	case *Platform:
		return codec.Default.EncodeAccount(schema.RecordPlatform, r.Fields())
	case DriverProfile:
		return codec.Default.EncodeAccount(schema.RecordDriverProfile, r.Fields())
	case *DriverProfile:
		return codec.Default.EncodeAccount(schema.RecordDriverProfile, r.Fields())
	case LicensePlateMapping:
		return codec.Default.EncodeAccount(schema.RecordLicensePlateMapping, r.Fields())
	case *LicensePlateMapping:
		return codec.Default.EncodeAccount(schema.RecordLicensePlateMapping, r.Fields())
	case Review:
		return codec.Default.EncodeAccount(schema.RecordReview, r.Fields())
	case *Review:
		return codec.Default.EncodeAccount(schema.RecordReview, r.Fields())
	default:
		return nil, fmt.Errorf("%w: %T is not a satch record", ledgererr.ErrEncode, record)
	}
}
