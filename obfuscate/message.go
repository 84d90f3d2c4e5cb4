package obfuscate

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	// FormatError is returned by DecryptMessage when the cipher text is valid JSON but not an array
	FormatError = "[format error]"
	// DecryptionError is returned by DecryptMessage when the cipher text cannot be parsed
	DecryptionError = "[decryption error]"
)

const (
	messageMultiplier = 7
	messageIncrement  = 13
	messageModulus    = 256
	// messageInverse is the modular multiplicative inverse of 7 modulo 256
	messageInverse = 183
)

// EncryptMessage encrypts every character with x3 = ((7x + 13) mod 256) + i², where i is
// the position of the character, and returns the values as a JSON array.
//
// Character codes are expected to be in [0, 255]; higher codes lose their upper bits.
func EncryptMessage(text string) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, x := range []rune(text) {
		if i > 0 {
			sb.WriteByte(',')
		}
		x2 := (int64(x)*messageMultiplier + messageIncrement) % messageModulus
		sb.WriteString(strconv.FormatInt(x2+int64(i)*int64(i), 10))
	}
	sb.WriteByte(']')
	return sb.String()
}

// DecryptMessage reverts EncryptMessage.
//
// It never fails: a cipher text which is not valid JSON or holds non numeric values yields DecryptionError,
// and valid JSON other than an array yields FormatError.
func DecryptMessage(cipherText string) string {
	var parsed interface{}
	if err := json.Unmarshal([]byte(cipherText), &parsed); err != nil {
		return DecryptionError
	}

	values, ok := parsed.([]interface{})
	if !ok {
		return FormatError
	}

	text := make([]rune, len(values))
	for i, v := range values {
		x3, ok := v.(float64)
		if !ok {
			return DecryptionError
		}
		text[i] = decryptCode(x3, i)
	}
	return string(text)
}

// decryptCode works on float64 values, so fractional input is reduced modulo 256
// first and truncated to a character code afterwards.
func decryptCode(x3 float64, position int) rune {
	p := float64(position)
	x2 := x3 - p*p
	term := x2 - messageIncrement
	xMod := messageInverse * term
	original := math.Mod(math.Mod(xMod, messageModulus)+messageModulus, messageModulus)
	return rune(math.Trunc(original))
}
