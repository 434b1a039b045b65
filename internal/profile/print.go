package profile

import (
	"fmt"
	"io"
)

const nameColumn = 60

// Print writes the event tree to w, one line per event, children indented by
// two spaces per level.
func (c *Capture) Print(w io.Writer) error {
	if len(c.events) == 0 {
		return ErrEmpty
	}

	var err error
	c.Walk(func(ev Event, depth int) {
		if err != nil {
			return
		}
		name := c.Name(ev)
		pad := nameColumn - len(name) - depth
		if pad < 0 {
			pad = 0
		}
		_, err = fmt.Fprintf(w, "%*s [%s] %*s - %dus\n", depth*2, "", name, pad, "", ev.Duration)
	})
	return err
}
