package protocol

const (
	StartByte byte = 0xFC
	EndByte   byte = 0xFE

	// The type byte is also the checksum seed.
	TypeStatus  byte = 0x5A
	TypeMessage byte = 0x5B

	StatusFrameSize  = 8
	MessageFrameSize = 12

	TextSize = 6

	// ResetValue clears every receiver display.
	ResetValue uint32 = 0xFFFFFFFF
)

// bit layout of the packed status value
const (
	positionShift   = 0
	positionBits    = 3
	lapShift        = 3
	lapBits         = 4
	secondsShift    = 7
	secondsBits     = 6
	hundredthsShift = 13
	hundredthsBits  = 7
	startedShift    = 20
	channelShift    = 21
	channelBits     = 4
)

const (
	MaxPosition   = 1<<positionBits - 1
	MaxLap        = 1<<lapBits - 1
	MaxSeconds    = 1<<secondsBits - 1
	MaxHundredths = 1<<hundredthsBits - 1
	MaxChannel    = 1<<channelBits - 1
	MaxSeq        = 7
)

// message flags layout
const (
	seqMask      = 0x07
	flagsChShift = 3
)
