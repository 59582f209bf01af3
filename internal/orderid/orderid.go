package orderid

import (
	"errors"
	"math/rand"
	"strings"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// maxAttempts bounds the collision loop per segment width.
const maxAttempts = 10

var prefixes = map[string]string{
	"Russia":  "RU",
	"Armenia": "AM",
}

const defaultPrefix = "XX"

var ErrExhausted = errors.New("orderid: no free id after bounded retries")

// ExistsFunc reports whether an order id is already taken in the store.
type ExistsFunc func(orderID string) (bool, error)

func Prefix(location string) string {
	if p, ok := prefixes[location]; ok {
		return p
	}
	return defaultPrefix
}

func newID(location string, size int) string {
	var b strings.Builder
	b.WriteString(Prefix(location))
	b.WriteByte('-')
	for i := 0; i < size; i++ {
		b.WriteByte(alphabet[rand.Intn(len(alphabet))])
	}
	return b.String()
}

// Generate produces a unique public order id for the given location.
// Collisions are retried up to maxAttempts at 6 characters, then the
// random segment widens to 8 for one more bounded round. A store error
// aborts immediately instead of looping.
func Generate(location string, exists ExistsFunc) (string, error) {
	for _, size := range []int{6, 8} {
		for i := 0; i < maxAttempts; i++ {
			id := newID(location, size)
			taken, err := exists(id)
			if err != nil {
				return "", err
			}
			if !taken {
				return id, nil
			}
		}
	}
	return "", ErrExhausted
}
