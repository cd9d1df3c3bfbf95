// Package ordercode generates the human-readable identifiers written during
// an import: order numbers, product codes, and QR-code values.
package ordercode

import (
	crypto_rand "crypto/rand"
	"fmt"
	"time"
)

const (
	// codeAlphabet covers the uppercase-alphanumeric product codes.
	codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits       = "0123456789"

	// ProductCodeLength is the length of generated product codes.
	ProductCodeLength = 6
	orderNoDigits     = 6
)

// OrderNo generates a fresh order number: ORD-<timestamp>-<random digits>.
// Sorting by order number approximates creation order within a run.
func OrderNo() string {
	return "ORD-" + time.Now().Format("20060102150405") + "-" + randomString(digits, orderNoDigits)
}

// ProductCode generates a random uppercase-alphanumeric product code for
// products auto-created during import.
func ProductCode() string {
	return randomString(codeAlphabet, ProductCodeLength)
}

// QRCode derives an order's QR-code value from its database identifier.
// The identifier is only known after the header insert, hence the
// create-then-update flow in the importer.
func QRCode(orderID int64) string {
	return fmt.Sprintf("ORDER-%d", orderID)
}

// randomString draws length characters uniformly from alphabet using
// rejection sampling over 6-bit values, so short alphabets stay unbiased.
func randomString(alphabet string, length int) string {
	// Request extra bytes to cover the rejection rate.
	buf := make([]byte, length*2+4)
	out := make([]byte, 0, length)

	for len(out) < length {
		if _, err := crypto_rand.Read(buf); err != nil {
			panic("failed to read random bytes: " + err.Error())
		}
		for _, b := range buf {
			v := int(b & 0x3f)
			if v < len(alphabet) {
				out = append(out, alphabet[v])
				if len(out) == length {
					break
				}
			}
		}
	}
	return string(out)
}
