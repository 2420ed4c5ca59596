package abi

import (
	"boardlet/hal"
)

// MaxValue is the largest success value a reply word can carry.
const MaxValue = 1<<31 - 1

// Reply is the single word returned for a syscall. Values 0..MaxValue are
// success; negative values are the one's complement of space<<16|code.
type Reply int32

// Ok encodes a success value. Values above MaxValue cannot be represented
// and encode as Internal/Generic.
func Ok(v uint32) Reply {
	if v > MaxValue {
		return EncodeError(hal.ErrInternal(hal.CodeGeneric))
	}
	return Reply(v)
}

// OkBool encodes false as 0 and true as 1.
func OkBool(b bool) Reply {
	if b {
		return 1
	}
	return 0
}

// EncodeError packs an error into a reply word.
func EncodeError(e *hal.Error) Reply {
	return Reply(^(int32(e.Space)<<16 | int32(e.Code)))
}

// Decode splits a reply word back into a value or an error.
func (r Reply) Decode() (uint32, error) {
	if r >= 0 {
		return uint32(r), nil
	}
	w := ^int32(r)
	return 0, &hal.Error{Space: hal.Space(w >> 16), Code: hal.Code(w & 0xFFFF)}
}
