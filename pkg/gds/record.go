package gds

import "math"

// Record types (high byte) combined with data types (low byte).
const (
	recHeader   uint16 = 0x0002
	recBgnLib   uint16 = 0x0102
	recLibName  uint16 = 0x0206
	recUnits    uint16 = 0x0305
	recEndLib   uint16 = 0x0400
	recBgnStr   uint16 = 0x0502
	recStrName  uint16 = 0x0606
	recEndStr   uint16 = 0x0700
	recBoundary uint16 = 0x0800
	recSRef     uint16 = 0x0A00
	recLayer    uint16 = 0x0D02
	recDatatype uint16 = 0x0E02
	recXY       uint16 = 0x1003
	recEndEl    uint16 = 0x1100
	recSName    uint16 = 0x1206
)

const (
	streamVersion = 600
	// A record length is a uint16 including the 4-byte header, so an XY
	// record holds at most 8191 coordinate pairs.
	maxRecordLen = 0xFFFF
	// MaxBoundaryPoints is the vertex limit of one boundary, closing vertex included.
	MaxBoundaryPoints = (maxRecordLen - 4) / 8
)

// encodeReal converts v to the 8-byte excess-64 representation:
// sign bit, 7-bit base-16 exponent, 56-bit mantissa in [1/16, 1).
func encodeReal(v float64) uint64 {
	if v == 0 {
		return 0
	}
	var sign uint64
	if v < 0 {
		sign = 1 << 63
		v = -v
	}
	exp := 0
	for v >= 1 {
		v /= 16
		exp++
	}
	for v < 1.0/16 {
		v *= 16
		exp--
	}
	mant := uint64(math.Round(v * (1 << 56)))
	if mant >= 1<<56 {
		mant >>= 4
		exp++
	}
	return sign | uint64(exp+64)<<56 | mant
}

// decodeReal is the inverse of encodeReal.
func decodeReal(b uint64) float64 {
	mant := float64(b&(1<<56-1)) / (1 << 56)
	if mant == 0 {
		return 0
	}
	exp := int((b>>56)&0x7F) - 64
	v := mant * math.Pow(16, float64(exp))
	if b>>63 != 0 {
		v = -v
	}
	return v
}
