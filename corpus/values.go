package corpus

import (
	"bytes"
	"os"

	"github.com/amazon-ion/ion-hash-test-driver/errors"
)

// ValueSpan is the raw byte range of one top-level value within a test
// file. Spans are ordered as the values appear in the file; their count is
// the number of digest lines an implementation must emit for the file.
type ValueSpan struct {
	Offset int
	Length int
}

// Values enumerates the top-level value spans of the file. A file that
// cannot be read or scanned makes the corpus itself unusable, so failures
// here are DiscoveryErrors.
func (f TestFile) Values() ([]ValueSpan, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, errors.NewDiscoveryError("cannot read test file %s: %v", f.Path, err)
	}
	if f.Encoding == EncodingBinary {
		spans, err := scanBinary(data)
		if err != nil {
			return nil, errors.Wrapf(err, "test file %s", f.Path)
		}
		return spans, nil
	}
	return scanText(data), nil
}

// scanText enumerates top-level values of a text corpus file. The external
// corpus generator emits exactly one top-level value per line, so each
// non-blank line is one value.
func scanText(data []byte) []ValueSpan {
	var spans []ValueSpan
	offset := 0
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) > 0 {
			spans = append(spans, ValueSpan{Offset: offset, Length: len(line)})
		}
		offset += len(line) + 1
	}
	return spans
}

// Ion binary framing constants. Only the framing layer is understood here:
// type-descriptor nibbles and length encodings, enough to find value
// boundaries without interpreting any content.
const (
	lengthVarUInt = 14 // low nibble: length follows as VarUInt
	lengthNull    = 15 // low nibble: null of this type, zero length

	typeNull       = 0  // also NOP padding when low nibble != 15
	typeBool       = 1  // low nibble encodes the value, zero length
	typeStruct     = 13 // low nibble 1 means VarUInt length (ordered struct)
	typeAnnotation = 14
	typeReserved   = 15
)

var binaryVersionMarker = []byte{0xE0, 0x01, 0x00, 0xEA}

// scanBinary walks the top-level type descriptors of a binary corpus file.
// Version markers and NOP padding are skipped without being counted; every
// other top-level descriptor (including an annotation wrapper with its
// enclosed value) is one value span.
func scanBinary(data []byte) ([]ValueSpan, error) {
	if !bytes.HasPrefix(data, binaryVersionMarker) {
		return nil, errors.NewDiscoveryError("binary file lacks version marker")
	}

	var spans []ValueSpan
	pos := 0
	for pos < len(data) {
		// A version marker may also appear between top-level values.
		if bytes.HasPrefix(data[pos:], binaryVersionMarker) {
			pos += len(binaryVersionMarker)
			continue
		}

		start := pos
		descriptor := data[pos]
		pos++

		typeCode := int(descriptor >> 4)
		lowNibble := int(descriptor & 0x0F)

		if typeCode == typeReserved {
			return nil, errors.NewDiscoveryError("reserved type descriptor 0x%02x at offset %d", descriptor, start)
		}

		bodyLen, next, err := bodyLength(data, pos, typeCode, lowNibble)
		if err != nil {
			return nil, err
		}
		pos = next + bodyLen
		if pos > len(data) {
			return nil, errors.NewDiscoveryError("truncated value at offset %d", start)
		}

		// NOP padding fills space between values and is not a value.
		if typeCode == typeNull && lowNibble != lengthNull {
			continue
		}

		spans = append(spans, ValueSpan{Offset: start, Length: pos - start})
	}
	return spans, nil
}

// bodyLength decodes the length of a value body following its type
// descriptor, returning the body length and the offset just past any
// VarUInt length field.
func bodyLength(data []byte, pos, typeCode, lowNibble int) (int, int, error) {
	switch {
	case lowNibble == lengthNull:
		return 0, pos, nil
	case typeCode == typeBool:
		// Low nibble is the boolean value itself.
		return 0, pos, nil
	case lowNibble == lengthVarUInt,
		typeCode == typeStruct && lowNibble == 1:
		// Structs with low nibble 1 are length-prefixed regardless.
		return readVarUInt(data, pos)
	default:
		return lowNibble, pos, nil
	}
}

// readVarUInt decodes an Ion VarUInt: 7 bits per byte, final byte flagged
// by its high bit.
func readVarUInt(data []byte, pos int) (int, int, error) {
	value := 0
	for i := pos; i < len(data); i++ {
		value = value<<7 | int(data[i]&0x7F)
		if data[i]&0x80 != 0 {
			return value, i + 1, nil
		}
		if i-pos >= 4 {
			return 0, 0, errors.NewDiscoveryError("VarUInt too long at offset %d", pos)
		}
	}
	return 0, 0, errors.NewDiscoveryError("truncated VarUInt at offset %d", pos)
}
