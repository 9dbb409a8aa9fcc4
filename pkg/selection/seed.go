package selection

import "unicode/utf16"

// DeriveSeed hashes a string (normally a YYYY-MM-DD date) into a generator seed.
//
// Each UTF-16 code unit c folds into a signed 32-bit accumulator as
// acc = acc*31 + c, wrapping on overflow, and the absolute value of the final
// accumulator is returned. Characters outside the BMP contribute both halves of
// their surrogate pair. The empty string maps to 0.
func DeriveSeed(input string) uint32 {
	var acc int32
	for _, c := range utf16.Encode([]rune(input)) {
		acc = acc*31 + int32(c)
	}
	if acc < 0 {
		// -math.MinInt32 does not fit in int32 but does in uint32.
		return uint32(-int64(acc))
	}
	return uint32(acc)
}
