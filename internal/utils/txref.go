package utils

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateTransactionRef returns TXN-<unix ms>-<9 base36 chars>.
func GenerateTransactionRef() string {
	return "TXN-" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + randomBase36(9)
}

func randomBase36(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(base36)))
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = base36[v.Int64()]
	}
	return string(b)
}
