// Package profile records nested timing events into a capture that can be
// printed as a tree or saved to and loaded from a compact binary file.
package profile

import (
	"time"

	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/pkg/errors"
)

var log = logger.GetOrCreate("profile")

// MaxDepth bounds how deeply events may nest.
const MaxDepth = 64

var (
	ErrActive     = errors.New("a capture is already active")
	ErrNotActive  = errors.New("no capture is active")
	ErrUnbalanced = errors.New("capture ended with open events")
	ErrEmpty      = errors.New("capture holds no events")
)

// Event is one timed region. Sibling and Child are indexes into the capture's
// event list; 0 means "none" since index 0 is always the first root event.
type Event struct {
	Start    uint64 // µs since the Unix epoch
	Duration uint64 // µs
	NameLoc  uint32
	NameLen  uint32
	Sibling  uint32
	Child    uint32
}

type frame struct {
	index     int
	lastChild int
}

// Capture collects events between Begin and End. It is not safe for
// concurrent use.
type Capture struct {
	names  []byte
	events []Event

	start    uint64
	duration uint64

	stack    []frame
	lastRoot int
	overflow int
	active   bool

	now func() time.Time
}

// NewCapture returns an idle capture.
func NewCapture() *Capture {
	return &Capture{now: time.Now, lastRoot: -1}
}

func (c *Capture) timestamp() uint64 {
	return uint64(c.now().UnixMicro())
}

// Begin discards any previous events and starts recording.
func (c *Capture) Begin() error {
	if c.active {
		return ErrActive
	}
	c.names = c.names[:0]
	c.events = c.events[:0]
	c.stack = c.stack[:0]
	c.lastRoot = -1
	c.overflow = 0
	c.duration = 0
	c.start = c.timestamp()
	c.active = true
	return nil
}

// End stops recording. It reports ErrUnbalanced when events are still open;
// the capture is stopped either way.
func (c *Capture) End() error {
	if !c.active {
		return ErrNotActive
	}
	c.active = false
	c.duration = c.timestamp() - c.start

	if open := len(c.stack) + c.overflow; open > 0 {
		c.stack = c.stack[:0]
		c.overflow = 0
		return errors.Wrapf(ErrUnbalanced, "%d still open", open)
	}
	return nil
}

// Active reports whether the capture is recording.
func (c *Capture) Active() bool {
	return c.active
}

// Push opens a nested event. It does nothing while the capture is idle.
func (c *Capture) Push(name string) {
	if !c.active {
		return
	}
	if len(c.stack) >= MaxDepth {
		c.overflow++
		log.Warn("profile event dropped, nesting too deep", "name", name, "max", MaxDepth)
		return
	}

	idx := len(c.events)
	c.events = append(c.events, Event{
		Start:   c.timestamp(),
		NameLoc: uint32(len(c.names)),
		NameLen: uint32(len(name)),
	})
	c.names = append(c.names, name...)

	if depth := len(c.stack); depth == 0 {
		if c.lastRoot >= 0 {
			c.events[c.lastRoot].Sibling = uint32(idx)
		}
		c.lastRoot = idx
	} else {
		parent := &c.stack[depth-1]
		if parent.lastChild < 0 {
			c.events[parent.index].Child = uint32(idx)
		} else {
			c.events[parent.lastChild].Sibling = uint32(idx)
		}
		parent.lastChild = idx
	}

	c.stack = append(c.stack, frame{index: idx, lastChild: -1})
}

// Pop closes the innermost open event.
func (c *Capture) Pop() {
	if !c.active {
		return
	}
	if c.overflow > 0 {
		c.overflow--
		return
	}
	if len(c.stack) == 0 {
		log.Warn("profile pop without a matching push")
		return
	}

	top := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	ev := &c.events[top.index]
	ev.Duration = c.timestamp() - ev.Start
}

// Start is when Begin was called, in µs since the Unix epoch.
func (c *Capture) Start() uint64 { return c.start }

// Duration is the span between Begin and End in µs.
func (c *Capture) Duration() uint64 { return c.duration }

// Events returns the recorded events in the order they were opened.
func (c *Capture) Events() []Event {
	return c.events
}

// Name returns the name of e.
func (c *Capture) Name(e Event) string {
	return string(c.names[e.NameLoc : e.NameLoc+e.NameLen])
}

// Walk visits every event depth first, starting at the first root.
func (c *Capture) Walk(fn func(e Event, depth int)) {
	if len(c.events) == 0 {
		return
	}
	c.walk(0, 0, fn)
}

func (c *Capture) walk(idx, depth int, fn func(Event, int)) {
	for {
		ev := c.events[idx]
		fn(ev, depth)
		if ev.Child != 0 {
			c.walk(int(ev.Child), depth+1, fn)
		}
		if ev.Sibling == 0 {
			return
		}
		idx = int(ev.Sibling)
	}
}
