package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"satch-client/internal/app/ledgererr"
	"satch-client/internal/app/schema"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var le = binary.LittleEndian

// Codec lays out requests and reads stored accounts using a schema registry.
// It holds no mutable state and is safe for concurrent use.
type Codec struct {
	registry *schema.Registry
}

func New(registry *schema.Registry) *Codec {
	return &Codec{registry: registry}
}

// Default is bound to the deployed satch program layouts.
var Default = New(schema.Satch)

func (c *Codec) Registry() *schema.Registry {
	return c.registry
}

// EncodeRequest produces discriminator("global", name) followed by the arguments in
// declared order.
func (c *Codec) EncodeRequest(name string, args Args) ([]byte, error) {
	rq, ok := c.registry.Request(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown request %q", ledgererr.ErrEncode, name)
	}
	return encode(schema.RequestDiscriminator(name), name, rq.Args, args)
}

// EncodeAccount produces the stored form of a record. The program writes these;
// the client only needs it to build fixtures and simulated ledgers.
func (c *Codec) EncodeAccount(name string, fields Args) ([]byte, error) {
	rs, ok := c.registry.Record(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown record %q", ledgererr.ErrEncode, name)
	}
	return encode(schema.AccountDiscriminator(name), name, rs.Fields, fields)
}

// DecodeAccount checks the discriminator and reads every declared field. Bytes after
// the last field are ignored since accounts are allocated with fixed space.
func (c *Codec) DecodeAccount(name string, data []byte) (*Record, error) {
	rs, ok := c.registry.Record(name)
	if !ok {
		return nil, ledgererr.NewDecodeError(name, 0, "unknown record kind")
	}
	if len(data) < schema.DiscriminatorSize {
		return nil, ledgererr.NewDecodeError(name, 0, "%d bytes is shorter than the discriminator", len(data))
	}
	want := schema.AccountDiscriminator(name)
	if !bytes.Equal(data[:schema.DiscriminatorSize], want[:]) {
		return nil, ledgererr.NewDecodeError(name, 0, "discriminator %x does not match %x", data[:schema.DiscriminatorSize], want)
	}

	values, err := decodeFields(name, rs.Fields, data[schema.DiscriminatorSize:])
	if err != nil {
		return nil, err
	}
	return &Record{Schema: rs, Values: values}, nil
}

// DecodeAnyAccount identifies the record kind from the discriminator before decoding.
func (c *Codec) DecodeAnyAccount(data []byte) (*Record, error) {
	if len(data) < schema.DiscriminatorSize {
		return nil, ledgererr.NewDecodeError("account", 0, "%d bytes is shorter than the discriminator", len(data))
	}
	var disc [schema.DiscriminatorSize]byte
	copy(disc[:], data)
	rs, ok := c.registry.RecordByDiscriminator(disc)
	if !ok {
		return nil, ledgererr.NewDecodeError("account", 0, "unknown discriminator %x", disc)
	}
	return c.DecodeAccount(rs.Name, data)
}

// DecodeRequest reads an instruction payload back into its arguments.
func (c *Codec) DecodeRequest(data []byte) (schema.RequestSchema, Args, error) {
	if len(data) < schema.DiscriminatorSize {
		return schema.RequestSchema{}, nil, ledgererr.NewDecodeError("request", 0, "%d bytes is shorter than the discriminator", len(data))
	}
	var disc [schema.DiscriminatorSize]byte
	copy(disc[:], data)
	rq, ok := c.registry.RequestByDiscriminator(disc)
	if !ok {
		return schema.RequestSchema{}, nil, ledgererr.NewDecodeError("request", 0, "unknown discriminator %x", disc)
	}
	args, err := decodeFields(rq.Name, rq.Args, data[schema.DiscriminatorSize:])
	if err != nil {
		return schema.RequestSchema{}, nil, err
	}
	return rq, args, nil
}

func encode(disc [schema.DiscriminatorSize]byte, name string, fields []schema.Field, values Args) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(disc[:])
	enc := bin.NewBorshEncoder(buf)

	for _, f := range fields {
		v, ok := values[f.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s is missing %q", ledgererr.ErrEncode, name, f.Name)
		}
		if err := encodeField(enc, f, v); err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", ledgererr.ErrEncode, name, f.Name, err)
		}
	}
	return buf.Bytes(), nil
}

func encodeField(enc *bin.Encoder, f schema.Field, v interface{}) error {
	switch f.Type {
	case schema.U8:
		x, ok := v.(uint8)
		if !ok {
			return typeMismatch(f, v)
		}
		return enc.WriteUint8(x)
	case schema.U16:
		x, ok := v.(uint16)
		if !ok {
			return typeMismatch(f, v)
		}
		return enc.WriteUint16(x, le)
	case schema.U32:
		x, ok := v.(uint32)
		if !ok {
			return typeMismatch(f, v)
		}
		return enc.WriteUint32(x, le)
	case schema.U64:
		x, ok := v.(uint64)
		if !ok {
			return typeMismatch(f, v)
		}
		return enc.WriteUint64(x, le)
	case schema.I64:
		x, ok := v.(int64)
		if !ok {
			return typeMismatch(f, v)
		}
		return enc.WriteInt64(x, le)
	case schema.Bool:
		x, ok := v.(bool)
		if !ok {
			return typeMismatch(f, v)
		}
		return enc.WriteBool(x)
	case schema.Fixed32:
		var key solana.PublicKey
		switch x := v.(type) {
		case solana.PublicKey:
			key = x
		case [32]byte:
			key = solana.PublicKeyFromBytes(x[:])
		default:
			return typeMismatch(f, v)
		}
		return enc.WriteBytes(key[:], false)
	case schema.Text:
		x, ok := v.(string)
		if !ok {
			return typeMismatch(f, v)
		}
		return writePrefixed(enc, f, []byte(x))
	case schema.Bytes:
		x, ok := v.([]byte)
		if !ok {
			return typeMismatch(f, v)
		}
		return writePrefixed(enc, f, x)
	default:
		return fmt.Errorf("unsupported field type %s", f.Type)
	}
}

func writePrefixed(enc *bin.Encoder, f schema.Field, payload []byte) error {
	if f.MaxLen > 0 && len(payload) > f.MaxLen {
		return fmt.Errorf("%d bytes exceeds the %d byte bound", len(payload), f.MaxLen)
	}
	if err := enc.WriteUint32(uint32(len(payload)), le); err != nil {
		return err
	}
	return enc.WriteBytes(payload, false)
}

func typeMismatch(f schema.Field, v interface{}) error {
	return fmt.Errorf("expected %s, got %T", f.Type, v)
}

func decodeFields(name string, fields []schema.Field, body []byte) (Args, error) {
	dec := bin.NewBorshDecoder(body)
	values := make(Args, len(fields))

	for _, f := range fields {
		offset := schema.DiscriminatorSize + len(body) - dec.Remaining()
		v, err := decodeField(dec, f)
		if err != nil {
			return nil, ledgererr.NewDecodeError(name, offset, "field %s (%s): %v", f.Name, f.Type, err)
		}
		values[f.Name] = v
	}
	return values, nil
}

func decodeField(dec *bin.Decoder, f schema.Field) (interface{}, error) {
	if need := f.Type.MinSize(); dec.Remaining() < need {
		return nil, fmt.Errorf("need %d bytes, %d remaining", need, dec.Remaining())
	}

	switch f.Type {
	case schema.U8:
		return dec.ReadUint8()
	case schema.U16:
		return dec.ReadUint16(le)
	case schema.U32:
		return dec.ReadUint32(le)
	case schema.U64:
		return dec.ReadUint64(le)
	case schema.I64:
		return dec.ReadInt64(le)
	case schema.Bool:
		b, err := dec.ReadUint8()
		if err != nil {
			return nil, err
		}
		if b > 1 {
			return nil, fmt.Errorf("invalid bool byte %d", b)
		}
		return b == 1, nil
	case schema.Fixed32:
		raw, err := dec.ReadNBytes(32)
		if err != nil {
			return nil, err
		}
		return solana.PublicKeyFromBytes(raw), nil
	case schema.Text:
		raw, err := readPrefixed(dec)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(raw) {
			return nil, fmt.Errorf("text is not valid utf-8")
		}
		return string(raw), nil
	case schema.Bytes:
		raw, err := readPrefixed(dec)
		if err != nil {
			return nil, err
		}
		return append([]byte{}, raw...), nil
	default:
		return nil, fmt.Errorf("unsupported field type %s", f.Type)
	}
}

func readPrefixed(dec *bin.Decoder) ([]byte, error) {
	n, err := dec.ReadUint32(le)
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(dec.Remaining()) {
		return nil, fmt.Errorf("length prefix %d exceeds %d remaining bytes", n, dec.Remaining())
	}
	if n == 0 {
		return []byte{}, nil
	}
	return dec.ReadNBytes(int(n))
}
