package protocol

import "github.com/pkg/errors"

var (
	ErrShortFrame = errors.New("frame too short")
	ErrStartByte  = errors.New("invalid start byte")
	ErrEndByte    = errors.New("invalid end byte")
	ErrFrameType  = errors.New("unknown frame type")
	ErrChecksum   = errors.New("checksum mismatch")
)
