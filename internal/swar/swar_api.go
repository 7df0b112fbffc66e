package swar

// IsASCII reports whether every byte in data is ASCII (< 0x80).
//
// The sigma tokenizer calls this once per input line before tokenizing: when
// it returns true, the IDENTITY fallback path (spec §4.2) can step one byte
// at a time instead of decoding UTF-8 rune widths.
func IsASCII(data []byte) bool {
	return isASCIIGeneric(data)
}
