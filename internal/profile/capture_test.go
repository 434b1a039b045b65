package profile

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCapture returns a capture whose clock advances 10µs per read.
func newTestCapture() *Capture {
	c := NewCapture()
	t := time.Unix(1700000000, 0)
	c.now = func() time.Time {
		t = t.Add(10 * time.Microsecond)
		return t
	}
	return c
}

type node struct {
	name  string
	depth int
}

func walkNames(c *Capture) []node {
	var out []node
	c.Walk(func(e Event, depth int) {
		out = append(out, node{c.Name(e), depth})
	})
	return out
}

func record(t *testing.T) *Capture {
	c := newTestCapture()
	require.NoError(t, c.Begin())
	c.Push("run")
	c.Push("repeat 0")
	c.Pop()
	c.Push("repeat 1")
	c.Push("inner")
	c.Pop()
	c.Pop()
	c.Pop()
	c.Push("second")
	c.Pop()
	require.NoError(t, c.End())
	return c
}

func TestCaptureTree(t *testing.T) {
	c := record(t)

	assert.Equal(t, []node{
		{"run", 0},
		{"repeat 0", 1},
		{"repeat 1", 1},
		{"inner", 2},
		{"second", 0},
	}, walkNames(c))

	events := c.Events()
	require.Len(t, events, 5)
	assert.Equal(t, uint32(1), events[0].Child)
	assert.Equal(t, uint32(4), events[0].Sibling)
	assert.Equal(t, uint32(2), events[1].Sibling)
	assert.Equal(t, uint32(3), events[2].Child)
	// run: opened at read 2, closed at read 9
	assert.Equal(t, uint64(70), events[0].Duration)
	assert.Equal(t, uint64(10), events[1].Duration)
	assert.Greater(t, c.Duration(), events[0].Duration)
}

func TestCaptureLifecycle(t *testing.T) {
	c := newTestCapture()
	assert.True(t, errors.Is(c.End(), ErrNotActive))

	c.Push("ignored")
	c.Pop()
	assert.Empty(t, c.Events())

	require.NoError(t, c.Begin())
	assert.True(t, c.Active())
	assert.True(t, errors.Is(c.Begin(), ErrActive))

	c.Push("open")
	err := c.End()
	assert.True(t, errors.Is(err, ErrUnbalanced))
	assert.False(t, c.Active())

	require.NoError(t, c.Begin())
	assert.Empty(t, c.Events(), "Begin starts from scratch")
	require.NoError(t, c.End())
}

func TestCaptureDepthLimit(t *testing.T) {
	c := newTestCapture()
	require.NoError(t, c.Begin())
	for i := 0; i < MaxDepth+3; i++ {
		c.Push("level")
	}
	assert.Len(t, c.Events(), MaxDepth)
	for i := 0; i < MaxDepth+3; i++ {
		c.Pop()
	}
	assert.NoError(t, c.End())
}

func TestPrint(t *testing.T) {
	c := record(t)

	var buf bytes.Buffer
	require.NoError(t, c.Print(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], " [run] "))
	assert.True(t, strings.HasSuffix(lines[0], " - 70us"))
	assert.True(t, strings.HasPrefix(lines[1], "   [repeat 0] "))
	assert.True(t, strings.HasPrefix(lines[3], "     [inner] "))
	assert.True(t, strings.HasPrefix(lines[4], " [second] "))

	assert.True(t, errors.Is(NewCapture().Print(&buf), ErrEmpty))
}

func TestEncodeDecode(t *testing.T) {
	c := record(t)

	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("UPERF ")))
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("UPERF ")))

	loaded, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, c.Start(), loaded.Start())
	assert.Equal(t, c.Duration(), loaded.Duration())
	assert.Equal(t, c.Events(), loaded.Events())
	assert.Equal(t, walkNames(c), walkNames(loaded))
}

func TestEncodeActiveCapture(t *testing.T) {
	c := newTestCapture()
	require.NoError(t, c.Begin())
	assert.True(t, errors.Is(c.Encode(&bytes.Buffer{}), ErrActive))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(strings.NewReader("NOTPRF and more"))
	assert.True(t, errors.Is(err, ErrBadMagic))

	_, err = Decode(strings.NewReader("UP"))
	assert.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, record(t).Encode(&buf))
	raw := buf.Bytes()

	truncated := raw[:len(raw)-3]
	_, err = Decode(bytes.NewReader(truncated))
	assert.Error(t, err)

	badTail := append([]byte(nil), raw...)
	copy(badTail[len(badTail)-6:], "XXXXXX")
	_, err = Decode(bytes.NewReader(badTail))
	assert.True(t, errors.Is(err, ErrBadMagic))
}

func TestDecodeRejectsBackwardLinks(t *testing.T) {
	c := record(t)
	c.events[4].Child = 1

	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf))
	_, err := Decode(&buf)
	assert.Error(t, err)
}

func TestDecodeRejectsSharedLinks(t *testing.T) {
	chain := NewCapture()
	chain.events = make([]Event, 40)
	for i := 0; i < len(chain.events)-1; i++ {
		chain.events[i].Child = uint32(i + 1)
		chain.events[i].Sibling = uint32(i + 1)
	}

	var buf bytes.Buffer
	require.NoError(t, chain.Encode(&buf))
	_, err := Decode(&buf)
	assert.Error(t, err)

	c := record(t)
	c.events[1].Sibling = c.events[0].Sibling

	buf.Reset()
	require.NoError(t, c.Encode(&buf))
	_, err = Decode(&buf)
	assert.Error(t, err)
}

func TestEventSectionLimit(t *testing.T) {
	assert.Equal(t, 32, binary.Size(Event{}))
	assert.Equal(t, maxNameBytes/binary.Size(Event{}), maxEvents)
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.uperf")
	c := record(t)
	require.NoError(t, c.SaveFile(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, walkNames(c), walkNames(loaded))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
