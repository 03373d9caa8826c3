package service

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const idTagAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateIDTag returns VS_<base36 millis>_<4 random base36 chars>, upper case.
func GenerateIDTag(now time.Time) (string, error) {
	suffix := make([]byte, 4)
	limit := big.NewInt(int64(len(idTagAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		suffix[i] = idTagAlphabet[n.Int64()]
	}
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return "VS_" + stamp + "_" + string(suffix), nil
}
