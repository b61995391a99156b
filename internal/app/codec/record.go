package codec

import (
	"fmt"

	"satch-client/internal/app/schema"

	"github.com/gagliardetto/solana-go"
)

// Args holds field values keyed by schema field name. Values use the native Go type of
// the field: uint8, uint16, uint32, uint64, int64, bool, solana.PublicKey, string, []byte.
type Args map[string]interface{}

// Record is a decoded account with every declared field converted to its Go type.
type Record struct {
	Schema schema.RecordSchema
	Values Args
}

func (r *Record) Name() string {
	return r.Schema.Name
}

func (r *Record) value(field string) (interface{}, error) {
	v, ok := r.Values[field]
	if !ok {
		return nil, fmt.Errorf("record %s has no field %q", r.Schema.Name, field)
	}
	return v, nil
}

func (r *Record) Uint8(field string) (uint8, error) {
	v, err := r.value(field)
	if err != nil {
		return 0, err
	}
	out, ok := v.(uint8)
	if !ok {
		return 0, fmt.Errorf("field %s.%s is %T, not uint8", r.Schema.Name, field, v)
	}
	return out, nil
}

func (r *Record) Uint64(field string) (uint64, error) {
	v, err := r.value(field)
	if err != nil {
		return 0, err
	}
	out, ok := v.(uint64)
	if !ok {
		return 0, fmt.Errorf("field %s.%s is %T, not uint64", r.Schema.Name, field, v)
	}
	return out, nil
}

func (r *Record) Bool(field string) (bool, error) {
	v, err := r.value(field)
	if err != nil {
		return false, err
	}
	out, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("field %s.%s is %T, not bool", r.Schema.Name, field, v)
	}
	return out, nil
}

func (r *Record) String(field string) (string, error) {
	v, err := r.value(field)
	if err != nil {
		return "", err
	}
	out, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %s.%s is %T, not string", r.Schema.Name, field, v)
	}
	return out, nil
}

func (r *Record) PublicKey(field string) (solana.PublicKey, error) {
	v, err := r.value(field)
	if err != nil {
		return solana.PublicKey{}, err
	}
	out, ok := v.(solana.PublicKey)
	if !ok {
		return solana.PublicKey{}, fmt.Errorf("field %s.%s is %T, not a public key", r.Schema.Name, field, v)
	}
	return out, nil
}
