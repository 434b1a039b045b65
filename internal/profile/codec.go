package profile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

const magic = "UPERF "

// Upper bounds for decoded sections, matching a 64 MiB capture buffer split
// evenly between names and events.
const (
	maxNameBytes = 32 << 20
	maxEvents    = (32 << 20) / 32
)

// ErrBadMagic is returned when a file is not framed by the capture magic.
var ErrBadMagic = errors.New("not a profile capture")

type header struct {
	Start    uint64
	Duration uint64
	NameLen  uint64
	Events   uint64
}

// Encode writes a finished capture to w. The layout is little endian:
// magic, start, duration, name byte count, event count, names, events, magic.
func (c *Capture) Encode(w io.Writer) error {
	if c.active {
		return ErrActive
	}

	bw := bufio.NewWriter(w)
	h := header{
		Start:    c.start,
		Duration: c.duration,
		NameLen:  uint64(len(c.names)),
		Events:   uint64(len(c.events)),
	}

	if _, err := bw.WriteString(magic); err != nil {
		return errors.Wrap(err, "writing profile magic")
	}
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return errors.Wrap(err, "writing profile header")
	}
	if _, err := bw.Write(c.names); err != nil {
		return errors.Wrap(err, "writing profile names")
	}
	if err := binary.Write(bw, binary.LittleEndian, c.events); err != nil {
		return errors.Wrap(err, "writing profile events")
	}
	if _, err := bw.WriteString(magic); err != nil {
		return errors.Wrap(err, "writing profile magic")
	}
	return bw.Flush()
}

// Decode reads a capture written by Encode. The result is idle and can be
// printed or walked.
func Decode(r io.Reader) (*Capture, error) {
	br := bufio.NewReader(r)
	if err := readMagic(br); err != nil {
		return nil, err
	}

	var h header
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(err, "reading profile header")
	}
	if h.NameLen > maxNameBytes || h.Events > maxEvents {
		return nil, errors.Errorf("profile too large: %d name bytes, %d events", h.NameLen, h.Events)
	}

	c := NewCapture()
	c.start = h.Start
	c.duration = h.Duration
	c.names = make([]byte, h.NameLen)
	c.events = make([]Event, h.Events)

	if _, err := io.ReadFull(br, c.names); err != nil {
		return nil, errors.Wrap(err, "reading profile names")
	}
	if err := binary.Read(br, binary.LittleEndian, c.events); err != nil {
		return nil, errors.Wrap(err, "reading profile events")
	}
	if err := readMagic(br); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func readMagic(r io.Reader) error {
	buf := make([]byte, len(magic))
	if _, err := io.ReadFull(r, buf); err != nil {
		return errors.Wrap(err, "reading profile magic")
	}
	if !bytes.Equal(buf, []byte(magic)) {
		return ErrBadMagic
	}
	return nil
}

// validate makes sure names are in range, links only point forward and no
// event is linked to more than once. The events must form a tree for a walk
// to visit each of them exactly once.
func (c *Capture) validate() error {
	linked := make([]bool, len(c.events))
	for i, ev := range c.events {
		if uint64(ev.NameLoc)+uint64(ev.NameLen) > uint64(len(c.names)) {
			return errors.Errorf("profile event %d: name out of range", i)
		}
		for _, link := range []uint32{ev.Child, ev.Sibling} {
			if link == 0 {
				continue
			}
			if int(link) <= i || int(link) >= len(c.events) {
				return errors.Errorf("profile event %d: bad link %d", i, link)
			}
			if linked[link] {
				return errors.Errorf("profile event %d: event %d is already linked", i, link)
			}
			linked[link] = true
		}
	}
	return nil
}

// SaveFile encodes the capture into path.
func (c *Capture) SaveFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating profile file")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "closing profile file")
		}
	}()
	return c.Encode(f)
}

// LoadFile decodes the capture stored at path.
func LoadFile(path string) (*Capture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening profile file")
	}
	defer f.Close()
	return Decode(f)
}
