package gds

import (
	"bufio"
	"encoding/binary"
	"io"
	"time"

	"github.com/matzehuels/sersmask/pkg/errors"
)

// Write validates lib and writes it to w as a GDSII stream.
func Write(w io.Writer, lib *Library) error {
	if err := lib.Validate(); err != nil {
		return err
	}
	sw := &streamWriter{w: bufio.NewWriter(w)}

	ts := timestamp(lib.Modified)
	sw.int16s(recHeader, streamVersion)
	sw.int16s(recBgnLib, append(ts, ts...)...)
	sw.ascii(recLibName, lib.Name)
	sw.reals(recUnits, lib.UserUnit, lib.DBUnit)

	for _, s := range lib.Structures {
		sw.int16s(recBgnStr, append(ts, ts...)...)
		sw.ascii(recStrName, s.Name)
		for _, b := range s.Boundaries {
			sw.empty(recBoundary)
			sw.int16s(recLayer, b.Layer)
			sw.int16s(recDatatype, b.Datatype)
			xy := make([]int32, 0, 2*len(b.Points)+2)
			for _, p := range b.Points {
				x, y, _ := lib.toDB(p)
				xy = append(xy, x, y)
			}
			xy = append(xy, xy[0], xy[1])
			sw.int32s(recXY, xy...)
			sw.empty(recEndEl)
		}
		for _, r := range s.Refs {
			x, y, _ := lib.toDB(r.Origin)
			sw.empty(recSRef)
			sw.ascii(recSName, r.Name)
			sw.int32s(recXY, x, y)
			sw.empty(recEndEl)
		}
		sw.empty(recEndStr)
	}
	sw.empty(recEndLib)

	if sw.err != nil {
		return errors.Wrap(errors.ErrCodeInternal, sw.err, "write gds")
	}
	if err := sw.w.Flush(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write gds")
	}
	return nil
}

// timestamp returns the six-field GDSII date of t.
func timestamp(t time.Time) []int16 {
	if t.IsZero() {
		t = time.Now()
	}
	t = t.UTC()
	return []int16{
		int16(t.Year()), int16(t.Month()), int16(t.Day()),
		int16(t.Hour()), int16(t.Minute()), int16(t.Second()),
	}
}

// streamWriter writes records and keeps the first error.
type streamWriter struct {
	w   *bufio.Writer
	err error
}

func (sw *streamWriter) header(rec uint16, n int) {
	if sw.err != nil {
		return
	}
	var h [4]byte
	binary.BigEndian.PutUint16(h[0:], uint16(n+4))
	binary.BigEndian.PutUint16(h[2:], rec)
	_, sw.err = sw.w.Write(h[:])
}

func (sw *streamWriter) write(v any) {
	if sw.err != nil {
		return
	}
	sw.err = binary.Write(sw.w, binary.BigEndian, v)
}

func (sw *streamWriter) empty(rec uint16) { sw.header(rec, 0) }

func (sw *streamWriter) int16s(rec uint16, vs ...int16) {
	sw.header(rec, 2*len(vs))
	sw.write(vs)
}

func (sw *streamWriter) int32s(rec uint16, vs ...int32) {
	sw.header(rec, 4*len(vs))
	sw.write(vs)
}

func (sw *streamWriter) reals(rec uint16, vs ...float64) {
	enc := make([]uint64, len(vs))
	for i, v := range vs {
		enc[i] = encodeReal(v)
	}
	sw.header(rec, 8*len(vs))
	sw.write(enc)
}

// ascii writes s padded with a NUL to an even length.
func (sw *streamWriter) ascii(rec uint16, s string) {
	b := []byte(s)
	if len(b)%2 == 1 {
		b = append(b, 0)
	}
	sw.header(rec, len(b))
	sw.write(b)
}
