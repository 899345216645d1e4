package protocol

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Frame is a fully rendered, checksummed frame ready for the serial link.
// Frames are shared between queue copies and must not be modified.
//
// Status:  StartByte | TypeStatus  | value(4, LE) | EndByte | checksum
// Message: StartByte | TypeMessage | flags(1) | text(6) | 0x00 | EndByte | checksum
type Frame []byte

func (f Frame) Type() byte {
	if len(f) < 2 {
		return 0
	}
	return f[1]
}

func (f Frame) String() string {
	var sb strings.Builder
	for i, b := range f {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", b)
	}
	return sb.String()
}

// StatusRecord is one channel's live race state. Each field must fit its
// bit width (see the Max constants); wider values are masked on Pack.
type StatusRecord struct {
	Position   uint8
	Lap        uint8
	Seconds    uint8
	Hundredths uint8
	Started    bool
	Channel    uint8
}

func field(v uint8, bits, shift uint) uint32 {
	return (uint32(v) & (1<<bits - 1)) << shift
}

func (r StatusRecord) Pack() uint32 {
	var v uint32
	v |= field(r.Position, positionBits, positionShift)
	v |= field(r.Lap, lapBits, lapShift)
	v |= field(r.Seconds, secondsBits, secondsShift)
	v |= field(r.Hundredths, hundredthsBits, hundredthsShift)
	if r.Started {
		v |= 1 << startedShift
	}
	v |= field(r.Channel, channelBits, channelShift)
	return v
}

func Unpack(v uint32) StatusRecord {
	get := func(bits, shift uint) uint8 {
		return uint8(v >> shift & (1<<bits - 1))
	}
	return StatusRecord{
		Position:   get(positionBits, positionShift),
		Lap:        get(lapBits, lapShift),
		Seconds:    get(secondsBits, secondsShift),
		Hundredths: get(hundredthsBits, hundredthsShift),
		Started:    get(1, startedShift) == 1,
		Channel:    get(channelBits, channelShift),
	}
}

func (r StatusRecord) String() string {
	return fmt.Sprintf("pos=%d lap=%d time=%d.%02d started=%t channel=%d",
		r.Position, r.Lap, r.Seconds, r.Hundredths, r.Started, r.Channel)
}

// Checksum is (seed + sum(payload) + EndByte) mod 256.
func Checksum(seed byte, payload []byte) byte {
	sum := seed
	for _, b := range payload {
		sum += b
	}
	return sum + EndByte
}

func EncodeStatus(r StatusRecord) Frame {
	return EncodeStatusValue(r.Pack())
}

func EncodeReset() Frame {
	return EncodeStatusValue(ResetValue)
}

func EncodeStatusValue(v uint32) Frame {
	f := make(Frame, StatusFrameSize)
	f[0] = StartByte
	f[1] = TypeStatus
	binary.LittleEndian.PutUint32(f[2:6], v)
	f[6] = EndByte
	f[7] = Checksum(TypeStatus, f[2:6])
	return f
}

// TextMessage is a short text for one channel, or all of them on the
// broadcast channel. Seq is the generation id shared by retransmissions.
type TextMessage struct {
	Text    string
	Channel uint8
	Seq     uint8
}

func (m TextMessage) Flags() byte {
	return m.Seq&seqMask | (m.Channel&MaxChannel)<<flagsChShift
}

// FormatText renders s into the fixed text field: truncated to TextSize,
// padded with spaces, non-ASCII replaced by '?'.
func FormatText(s string) [TextSize]byte {
	var out [TextSize]byte
	i := 0
	for _, r := range s {
		if i == TextSize {
			break
		}
		if r < 0x20 || r > 0x7E {
			r = '?'
		}
		out[i] = byte(r)
		i++
	}
	for ; i < TextSize; i++ {
		out[i] = ' '
	}
	return out
}

func EncodeMessage(m TextMessage) Frame {
	text := FormatText(m.Text)
	f := make(Frame, MessageFrameSize)
	f[0] = StartByte
	f[1] = TypeMessage
	f[2] = m.Flags()
	copy(f[3:3+TextSize], text[:])
	f[9] = 0x00
	f[10] = EndByte
	f[11] = Checksum(TypeMessage, f[2:10])
	return f
}

// Decoded is the content of a validated frame.
type Decoded struct {
	Type    byte
	Status  uint32
	Message TextMessage
}

func Decode(data []byte) (*Decoded, error) {
	if len(data) < 2 {
		return nil, ErrShortFrame
	}
	if data[0] != StartByte {
		return nil, ErrStartByte
	}
	var size int
	switch data[1] {
	case TypeStatus:
		size = StatusFrameSize
	case TypeMessage:
		size = MessageFrameSize
	default:
		return nil, ErrFrameType
	}
	if len(data) < size {
		return nil, ErrShortFrame
	}
	if data[size-2] != EndByte {
		return nil, ErrEndByte
	}
	if Checksum(data[1], data[2:size-2]) != data[size-1] {
		return nil, ErrChecksum
	}

	d := &Decoded{Type: data[1]}
	if d.Type == TypeStatus {
		d.Status = binary.LittleEndian.Uint32(data[2:6])
		return d, nil
	}
	flags := data[2]
	d.Message = TextMessage{
		Text:    string(data[3 : 3+TextSize]),
		Channel: flags >> flagsChShift & MaxChannel,
		Seq:     flags & seqMask,
	}
	return d, nil
}
