package schema

import (
	"fmt"
	"sort"
)

type FieldType uint8

const (
	U8 FieldType = iota + 1
	U16
	U32
	U64
	I64
	Bool
	Fixed32
	Text
	Bytes
)

// lengthPrefixSize is the u32 little-endian prefix written before text and bytes.
const lengthPrefixSize = 4

func (ft FieldType) String() string {
	switch ft {
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case I64:
		return "i64"
	case Bool:
		return "bool"
	case Fixed32:
		return "fixed32"
	case Text:
		return "text"
	case Bytes:
		return "bytes"
	default:
		return fmt.Sprintf("FieldType(%d)", uint8(ft))
	}
}

// Variable reports whether the field is length-prefixed.
func (ft FieldType) Variable() bool {
	return ft == Text || ft == Bytes
}

// MinSize is the smallest number of bytes the field can occupy on the wire.
func (ft FieldType) MinSize() int {
	switch ft {
	case U8, Bool:
		return 1
	case U16:
		return 2
	case U32:
		return 4
	case U64, I64:
		return 8
	case Fixed32:
		return 32
	case Text, Bytes:
		return lengthPrefixSize
	default:
		return 0
	}
}

// Field is one entry of a layout. MaxLen bounds the payload of a variable field,
// zero means unbounded.
type Field struct {
	Name   string
	Type   FieldType
	MaxLen int
}

// MaxSize is the widest encoding of the field, or -1 when unbounded.
func (f Field) MaxSize() int {
	if !f.Type.Variable() {
		return f.Type.MinSize()
	}
	if f.MaxLen == 0 {
		return -1
	}
	return lengthPrefixSize + f.MaxLen
}

// RecordSchema is the stored layout of one account kind, after the discriminator.
type RecordSchema struct {
	Name   string
	Fields []Field
}

// MinSize includes the 8-byte discriminator.
func (rs RecordSchema) MinSize() int {
	size := DiscriminatorSize
	for _, f := range rs.Fields {
		size += f.Type.MinSize()
	}
	return size
}

// Space is the allocation size of a fully populated record, or -1 when a field is unbounded.
func (rs RecordSchema) Space() int {
	size := DiscriminatorSize
	for _, f := range rs.Fields {
		fs := f.MaxSize()
		if fs < 0 {
			return -1
		}
		size += fs
	}
	return size
}

// Offset returns the absolute byte offset of a field, including the discriminator.
// It only succeeds while every preceding field has a fixed width.
func (rs RecordSchema) Offset(field string) (int, bool) {
	offset := DiscriminatorSize
	for _, f := range rs.Fields {
		if f.Name == field {
			return offset, true
		}
		if f.Type.Variable() {
			return 0, false
		}
		offset += f.Type.MinSize()
	}
	return 0, false
}

func (rs RecordSchema) Field(name string) (Field, bool) {
	for _, f := range rs.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// AccountMeta is a named account slot of a request, in program order.
type AccountMeta struct {
	Name     string
	Writable bool
	Signer   bool
}

// RequestSchema is the argument layout and account list of one instruction.
type RequestSchema struct {
	Name     string
	Args     []Field
	Accounts []AccountMeta
}

type Registry struct {
	records  map[string]RecordSchema
	requests map[string]RequestSchema
}

func NewRegistry(records []RecordSchema, requests []RequestSchema) *Registry {
	r := &Registry{
		records:  make(map[string]RecordSchema, len(records)),
		requests: make(map[string]RequestSchema, len(requests)),
	}
	for _, rs := range records {
		r.records[rs.Name] = rs
	}
	for _, rq := range requests {
		r.requests[rq.Name] = rq
	}
	return r
}

func (r *Registry) Record(name string) (RecordSchema, bool) {
	rs, ok := r.records[name]
	return rs, ok
}

func (r *Registry) Request(name string) (RequestSchema, bool) {
	rq, ok := r.requests[name]
	return rq, ok
}

// Records lists record schemas sorted by name.
func (r *Registry) Records() []RecordSchema {
	out := make([]RecordSchema, 0, len(r.records))
	for _, rs := range r.records {
		out = append(out, rs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RecordByDiscriminator finds the record kind a stored account claims to be.
func (r *Registry) RecordByDiscriminator(disc [DiscriminatorSize]byte) (RecordSchema, bool) {
	for _, rs := range r.records {
		if AccountDiscriminator(rs.Name) == disc {
			return rs, true
		}
	}
	return RecordSchema{}, false
}

// RequestByDiscriminator finds the instruction a request payload is tagged with.
func (r *Registry) RequestByDiscriminator(disc [DiscriminatorSize]byte) (RequestSchema, bool) {
	for _, rq := range r.requests {
		if RequestDiscriminator(rq.Name) == disc {
			return rq, true
		}
	}
	return RequestSchema{}, false
}
