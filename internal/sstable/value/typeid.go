package value

import "github.com/pmcfadin/cqlite-sub003/internal/sstable/errs"

// TypeID is the one-byte wire type identifier used where the format demands
// self-description: collection/tuple/UDT headers and top-level wire
// encodings (spec.md §4.2). Inside a schema-typed column the id is elided
// and the schema-declared Kind is used directly instead.
type TypeID byte

const (
	TypeIDCustom    TypeID = 0x00
	TypeIDAscii     TypeID = 0x01
	TypeIDBigInt    TypeID = 0x02
	TypeIDBlob      TypeID = 0x03
	TypeIDBoolean   TypeID = 0x04
	TypeIDCounter   TypeID = 0x05
	TypeIDDecimal   TypeID = 0x06
	TypeIDDouble    TypeID = 0x07
	TypeIDFloat     TypeID = 0x08
	TypeIDInt       TypeID = 0x09
	TypeIDTimestamp TypeID = 0x0B
	TypeIDUUID      TypeID = 0x0C
	TypeIDVarchar   TypeID = 0x0D
	TypeIDVarint    TypeID = 0x0E
	TypeIDTimeUUID  TypeID = 0x0F
	TypeIDInet      TypeID = 0x10
	TypeIDDate      TypeID = 0x11
	TypeIDTime      TypeID = 0x12
	TypeIDSmallInt  TypeID = 0x13
	TypeIDTinyInt   TypeID = 0x14
	TypeIDDuration  TypeID = 0x15
	TypeIDList      TypeID = 0x20
	TypeIDMap       TypeID = 0x21
	TypeIDSet       TypeID = 0x22
	TypeIDUDT       TypeID = 0x30
	TypeIDTuple     TypeID = 0x31
)

// KindFor maps a wire type id to its Kind, for primitive ids and for the
// list/set/map/udt/tuple ids alike; readTypeID uses it for every element
// type id in a collection, tuple, or UDT header.
func KindFor(id TypeID) (Kind, error) {
	switch id {
	case TypeIDAscii:
		return KindAscii, nil
	case TypeIDBigInt:
		return KindBigInt, nil
	case TypeIDBlob:
		return KindBlob, nil
	case TypeIDBoolean:
		return KindBool, nil
	case TypeIDCounter:
		return KindCounter, nil
	case TypeIDDecimal:
		return KindDecimal, nil
	case TypeIDDouble:
		return KindDouble, nil
	case TypeIDFloat:
		return KindFloat, nil
	case TypeIDInt:
		return KindInt, nil
	case TypeIDTimestamp:
		return KindTimestamp, nil
	case TypeIDUUID:
		return KindUUID, nil
	case TypeIDVarchar:
		return KindText, nil
	case TypeIDVarint:
		return KindVarint, nil
	case TypeIDTimeUUID:
		return KindTimeUUID, nil
	case TypeIDInet:
		return KindInet, nil
	case TypeIDDate:
		return KindDate, nil
	case TypeIDTime:
		return KindTime, nil
	case TypeIDSmallInt:
		return KindSmallInt, nil
	case TypeIDTinyInt:
		return KindTinyInt, nil
	case TypeIDDuration:
		return KindDuration, nil
	case TypeIDList:
		return KindList, nil
	case TypeIDSet:
		return KindSet, nil
	case TypeIDMap:
		return KindMap, nil
	case TypeIDUDT:
		return KindUDT, nil
	case TypeIDTuple:
		return KindTuple, nil
	default:
		return 0, &errs.CorruptFormat{Reason: "unknown type id"}
	}
}

// TypeIDFor maps a Kind back to its wire type id, for encoding.
func TypeIDFor(k Kind) TypeID {
	switch k {
	case KindAscii:
		return TypeIDAscii
	case KindBigInt:
		return TypeIDBigInt
	case KindBlob:
		return TypeIDBlob
	case KindBool:
		return TypeIDBoolean
	case KindCounter:
		return TypeIDCounter
	case KindDecimal:
		return TypeIDDecimal
	case KindDouble:
		return TypeIDDouble
	case KindFloat:
		return TypeIDFloat
	case KindInt:
		return TypeIDInt
	case KindTimestamp:
		return TypeIDTimestamp
	case KindUUID:
		return TypeIDUUID
	case KindText:
		return TypeIDVarchar
	case KindVarint:
		return TypeIDVarint
	case KindTimeUUID:
		return TypeIDTimeUUID
	case KindInet:
		return TypeIDInet
	case KindDate:
		return TypeIDDate
	case KindTime:
		return TypeIDTime
	case KindSmallInt:
		return TypeIDSmallInt
	case KindTinyInt:
		return TypeIDTinyInt
	case KindDuration:
		return TypeIDDuration
	case KindList:
		return TypeIDList
	case KindSet:
		return TypeIDSet
	case KindMap:
		return TypeIDMap
	case KindUDT:
		return TypeIDUDT
	case KindTuple:
		return TypeIDTuple
	default:
		return TypeIDCustom
	}
}
