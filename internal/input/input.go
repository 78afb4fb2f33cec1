// Package input turns a raw terminal byte stream into per-frame key state.
package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
// Terminals only report presses (with autorepeat), never releases.
const keyHoldDuration = 30 * time.Millisecond

// Input represents the current frame's input state.
type Input struct {
	Quit      bool // Ctrl+C or end of stream
	Left      bool
	Right     bool
	Up        bool
	Space     bool
	Enter     bool
	Backspace bool
	Escape    bool

	// Typed holds the single-byte keys received this frame, in order,
	// with escape sequences (arrow keys) removed.
	Typed []byte
}

// Tapped reports whether any of the given keys arrived this frame. Unlike the
// held flags it fires once per key press, which suits menu actions.
func (in Input) Tapped(keys ...byte) bool {
	for _, b := range in.Typed {
		for _, k := range keys {
			if b == k {
				return true
			}
		}
	}
	return false
}

// Text returns the printable characters typed this frame.
func (in Input) Text() string {
	var out []byte
	for _, b := range in.Typed {
		if b >= 0x20 && b < 0x7f {
			out = append(out, b)
		}
	}
	return string(out)
}

// keyState tracks the last time each held key was pressed.
type keyState struct {
	left  time.Time
	right time.Time
	up    time.Time
	space time.Time
}

// Stream delivers input bytes via a channel and tracks key state for combinations.
type Stream struct {
	ch     chan byte
	state  keyState
	closed bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch: make(chan byte, 128),
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ResetKeyInput forgets held keys, so a key used to leave a screen does not
// leak into the next one.
func ResetKeyInput(s *Stream) {
	if s == nil {
		return
	}
	s.state = keyState{}
}

// ReadInput drains all available bytes from the stream (non-blocking).
// Handles escape sequences for arrow keys and accumulates all pressed keys.
func ReadInput(s *Stream) Input {
	return readAt(s, time.Now())
}

func readAt(s *Stream, now time.Time) Input {
	var buf []byte

drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	in := Input{Quit: s.closed}

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// CSI sequence: ESC [ <code>
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A':
				s.state.up = now
			case 'C':
				s.state.right = now
			case 'D':
				s.state.left = now
			}
			i += 2
			continue
		}

		in.Typed = append(in.Typed, b)
		applyByte(&s.state, &in, b, now)
	}

	in.Left = in.Left || now.Sub(s.state.left) < keyHoldDuration
	in.Right = in.Right || now.Sub(s.state.right) < keyHoldDuration
	in.Up = in.Up || now.Sub(s.state.up) < keyHoldDuration
	in.Space = in.Space || now.Sub(s.state.space) < keyHoldDuration

	return in
}

// applyByte updates held-key timestamps and one-shot flags for a single byte.
func applyByte(state *keyState, in *Input, b byte, now time.Time) {
	switch b {
	case 0x03:
		in.Quit = true
	case 'a', 'A':
		state.left = now
	case 'd', 'D':
		state.right = now
	case 'w', 'W':
		state.up = now
	case ' ':
		state.space = now
	case '\n', '\r':
		in.Enter = true
	case '\b', 0x7f:
		in.Backspace = true
	case '\x1b':
		in.Escape = true
	}
}
