package record

import "fmt"

// Record is one fixed-schema entry of a store.
//
// No field is optional. Uniqueness of ID is not enforced here.
type Record struct {
	ID          int64
	Name        string
	Designation string
	Amount      float64
}

// String renders the record as a single aligned line.
func (r Record) String() string {
	return fmt.Sprintf("ID: %-5d | Name: %-20s | Designation: %-15s | Amount: %.2f",
		r.ID, r.Name, r.Designation, r.Amount)
}

// Field identifies a record field on the wire.
type Field uint8

const (
	FieldID          Field = 1
	FieldName        Field = 2
	FieldDesignation Field = 3
	FieldAmount      Field = 4
)

// String returns the field name.
func (f Field) String() string {
	switch f {
	case FieldID:
		return "id"
	case FieldName:
		return "name"
	case FieldDesignation:
		return "designation"
	case FieldAmount:
		return "amount"
	default:
		return fmt.Sprintf("field(%d)", uint8(f))
	}
}

// Kind identifies the value representation of a field on the wire.
type Kind uint8

const (
	KindInt64   Kind = 1
	KindString  Kind = 2
	KindFloat64 Kind = 3
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInt64:
		return "int64"
	case KindString:
		return "string"
	case KindFloat64:
		return "float64"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// schema maps each field to the kind it must be encoded with.
var schema = [...]struct {
	field Field
	kind  Kind
}{
	{FieldID, KindInt64},
	{FieldName, KindString},
	{FieldDesignation, KindString},
	{FieldAmount, KindFloat64},
}

func expectedKind(f Field) (Kind, bool) {
	for _, s := range schema {
		if s.field == f {
			return s.kind, true
		}
	}
	return 0, false
}
