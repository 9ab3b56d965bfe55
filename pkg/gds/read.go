package gds

import (
	"bufio"
	"encoding/binary"
	"io"
	"strings"
	"time"

	"github.com/matzehuels/sersmask/pkg/errors"
	"github.com/matzehuels/sersmask/pkg/geom"
)

// Read parses a GDSII stream containing boundaries and structure
// references. Other element types are rejected.
func Read(r io.Reader) (*Library, error) {
	br := bufio.NewReader(r)
	lib := &Library{}
	var (
		cur  *Structure
		elem uint16
		bnd  Boundary
		ref  Ref
		xy   []int32
	)

	for {
		rec, data, err := readRecord(br)
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "gds stream ended before ENDLIB")
		}
		if err != nil {
			return nil, err
		}

		switch rec {
		case recHeader:
		case recEndStr:
			cur = nil
		case recBgnLib:
			if ts := int16s(data); len(ts) >= 6 {
				lib.Modified = time.Date(int(ts[0]), time.Month(ts[1]), int(ts[2]),
					int(ts[3]), int(ts[4]), int(ts[5]), 0, time.UTC)
			}
		case recLibName:
			lib.Name = ascii(data)
		case recUnits:
			if len(data) != 16 {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "UNITS record has %d bytes", len(data))
			}
			lib.UserUnit = decodeReal(binary.BigEndian.Uint64(data[0:]))
			lib.DBUnit = decodeReal(binary.BigEndian.Uint64(data[8:]))
		case recBgnStr:
			cur = &Structure{}
			lib.Structures = append(lib.Structures, cur)
		case recStrName:
			if cur == nil {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "STRNAME outside a structure")
			}
			cur.Name = ascii(data)
		case recBoundary, recSRef:
			if cur == nil {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "element outside a structure")
			}
			elem, bnd, ref, xy = rec, Boundary{}, Ref{}, nil
		case recLayer:
			bnd.Layer = first16(data)
		case recDatatype:
			bnd.Datatype = first16(data)
		case recSName:
			ref.Name = ascii(data)
		case recXY:
			xy = int32s(data)
		case recEndEl:
			if err := finishElement(lib, cur, elem, bnd, ref, xy); err != nil {
				return nil, err
			}
			elem = 0
		case recEndLib:
			return lib, nil
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "unsupported gds record 0x%04X", rec)
		}
	}
}

func finishElement(lib *Library, cur *Structure, elem uint16, bnd Boundary, ref Ref, xy []int32) error {
	toUser := func(x, y int32) geom.Point {
		return geom.Pt(float64(x)*lib.UserUnit, float64(y)*lib.UserUnit)
	}
	switch elem {
	case recBoundary:
		if len(xy) < 8 || len(xy)%2 != 0 {
			return errors.New(errors.ErrCodeInvalidFormat, "boundary with %d coordinates", len(xy))
		}
		// Drop the closing vertex.
		n := len(xy)/2 - 1
		bnd.Points = make([]geom.Point, n)
		for i := range n {
			bnd.Points[i] = toUser(xy[2*i], xy[2*i+1])
		}
		cur.Boundaries = append(cur.Boundaries, bnd)
	case recSRef:
		if len(xy) != 2 {
			return errors.New(errors.ErrCodeInvalidFormat, "sref with %d coordinates", len(xy))
		}
		ref.Origin = toUser(xy[0], xy[1])
		cur.Refs = append(cur.Refs, ref)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "ENDEL without element")
	}
	return nil
}

func readRecord(r io.Reader) (uint16, []byte, error) {
	var h [4]byte
	if _, err := io.ReadFull(r, h[:]); err != nil {
		if err == io.EOF {
			return 0, nil, io.EOF
		}
		return 0, nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read record header")
	}
	n := int(binary.BigEndian.Uint16(h[0:]))
	if n < 4 || n%2 != 0 {
		return 0, nil, errors.New(errors.ErrCodeInvalidFormat, "bad record length %d", n)
	}
	data := make([]byte, n-4)
	if _, err := io.ReadFull(r, data); err != nil {
		return 0, nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read record body")
	}
	return binary.BigEndian.Uint16(h[2:]), data, nil
}

func ascii(b []byte) string { return strings.TrimRight(string(b), "\x00") }

func first16(b []byte) int16 {
	if len(b) < 2 {
		return 0
	}
	return int16(binary.BigEndian.Uint16(b))
}

func int16s(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.BigEndian.Uint16(b[2*i:]))
	}
	return out
}

func int32s(b []byte) []int32 {
	out := make([]int32, len(b)/4)
	for i := range out {
		out[i] = int32(binary.BigEndian.Uint32(b[4*i:]))
	}
	return out
}
