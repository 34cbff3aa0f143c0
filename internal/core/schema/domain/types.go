// Package domain contains the core entities of the schema layer: column
// kinds, column definitions and ordered table definitions.
package domain

// ColumnType is the enumerated database kind of a column. The constant
// values are the ClickHouse type spellings so an unparameterized kind
// renders as itself.
type ColumnType string

const (
	// Unsigned integer kinds.
	TypeUInt8  ColumnType = "UInt8"
	TypeUInt16 ColumnType = "UInt16"
	TypeUInt32 ColumnType = "UInt32"
	TypeUInt64 ColumnType = "UInt64"

	// Signed integer kinds.
	TypeInt8  ColumnType = "Int8"
	TypeInt16 ColumnType = "Int16"
	TypeInt32 ColumnType = "Int32"
	TypeInt64 ColumnType = "Int64"

	// Floating point and decimal kinds.
	TypeFloat32 ColumnType = "Float32"
	TypeFloat64 ColumnType = "Float64"
	TypeDecimal ColumnType = "Decimal"

	// String kinds.
	TypeString      ColumnType = "String"
	TypeFixedString ColumnType = "FixedString"

	// Date and time kinds.
	TypeDate       ColumnType = "Date"
	TypeDateTime   ColumnType = "DateTime"
	TypeDateTime64 ColumnType = "DateTime64"

	// TypeBool is stored as UInt8 on the wire but kept distinct in the
	// type system.
	TypeBool ColumnType = "Bool"

	// TypeUUID is a 128-bit UUID.
	TypeUUID ColumnType = "UUID"

	// Enumeration kinds. Ordinals are assigned sequentially from 1 in
	// declaration order of EnumValues.
	TypeEnum8  ColumnType = "Enum8"
	TypeEnum16 ColumnType = "Enum16"

	// Composite kinds.
	TypeArray  ColumnType = "Array"
	TypeTuple  ColumnType = "Tuple"
	TypeMap    ColumnType = "Map"
	TypeNested ColumnType = "Nested"
	TypeJSON   ColumnType = "JSON"

	// Wrapper kinds.
	TypeNullable       ColumnType = "Nullable"
	TypeLowCardinality ColumnType = "LowCardinality"

	// Network address kinds.
	TypeIPv4 ColumnType = "IPv4"
	TypeIPv6 ColumnType = "IPv6"
)

// IsInteger reports whether the kind is one of the integer kinds.
func (t ColumnType) IsInteger() bool {
	switch t {
	case TypeUInt8, TypeUInt16, TypeUInt32, TypeUInt64,
		TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		return true
	}
	return false
}

// IsNumeric reports whether the kind belongs to the numeric family.
func (t ColumnType) IsNumeric() bool {
	switch t {
	case TypeFloat32, TypeFloat64, TypeDecimal:
		return true
	}
	return t.IsInteger()
}

// IsStringLike reports whether the kind belongs to the string family.
// Enum kinds are deliberately excluded.
func (t ColumnType) IsStringLike() bool {
	switch t {
	case TypeString, TypeFixedString, TypeUUID, TypeIPv4, TypeIPv6:
		return true
	}
	return false
}

// IsDateTime reports whether the kind belongs to the date/time family.
func (t ColumnType) IsDateTime() bool {
	switch t {
	case TypeDate, TypeDateTime, TypeDateTime64:
		return true
	}
	return false
}

// DefaultKind tags the variant held by a Default value.
type DefaultKind int

const (
	// DefaultLiteral is a plain value default.
	DefaultLiteral DefaultKind = iota
	// DefaultGenerator is a zero-argument producer invoked at
	// default-computation time.
	DefaultGenerator
)

// Default is the closed default-value variant of a column: either a
// literal value or a generator function. The explicit tag keeps column
// definitions inspectable without function duck-typing.
type Default struct {
	Kind      DefaultKind
	Value     interface{}
	Generator func() interface{}
}

// Literal constructs a literal default.
func Literal(v interface{}) *Default {
	return &Default{Kind: DefaultLiteral, Value: v}
}

// Generated constructs a generator default.
func Generated(fn func() interface{}) *Default {
	return &Default{Kind: DefaultGenerator, Generator: fn}
}

// Resolve returns the default value, invoking the generator if present.
func (d *Default) Resolve() interface{} {
	if d == nil {
		return nil
	}
	if d.Kind == DefaultGenerator && d.Generator != nil {
		return d.Generator()
	}
	return d.Value
}

// Column is one database column's contract.
type Column struct {
	Type          ColumnType
	Nullable      bool
	PrimaryKey    bool
	Unique        bool
	AutoIncrement bool
	Default       *Default
	Comment       string

	// ElementType parameterizes Array and LowCardinality kinds.
	ElementType *Column
	// Precision and Scale parameterize Decimal; Precision alone
	// parameterizes DateTime64.
	Precision int
	Scale     int
	// Length parameterizes FixedString.
	Length int
	// EnumValues parameterizes Enum8/Enum16; ordinals start at 1 in
	// declaration order.
	EnumValues []string
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	if c == nil {
		return nil
	}
	out := *c
	out.ElementType = c.ElementType.Clone()
	if c.EnumValues != nil {
		out.EnumValues = append([]string(nil), c.EnumValues...)
	}
	if c.Default != nil {
		d := *c.Default
		out.Default = &d
	}
	return &out
}
