package aesmodes

// Pad returns a copy of data padded to a multiple of BlockSize. Between 1
// and BlockSize bytes are always added, each equal to the number added.
func Pad(data []byte) []byte {
	n := BlockSize - len(data)%BlockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	fillPad(out[len(data):], n)
	return out
}

// Unpad validates and strips the padding added by Pad. The result aliases
// data.
func Unpad(data []byte) ([]byte, error) {
	n, ok := padLen(data)
	if !ok {
		return nil, ErrPadding
	}
	return data[:len(data)-n], nil
}

// padBlock copies tail (shorter than a block) into dst and pads the rest.
func padBlock(dst *[BlockSize]byte, tail []byte) {
	copy(dst[:], tail)
	fillPad(dst[len(tail):], BlockSize-len(tail))
}

func fillPad(dst []byte, n int) {
	for i := range dst {
		dst[i] = byte(n)
	}
}

func padLen(data []byte) (int, bool) {
	if len(data) == 0 {
		return 0, false
	}
	n := int(data[len(data)-1])
	if n < 1 || n > BlockSize || n > len(data) {
		return 0, false
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return 0, false
		}
	}
	return n, true
}
