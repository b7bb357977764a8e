package util

import (
	"fmt"
	"math/big"

	"github.com/dustin/go-humanize"
)

func TokenString(amount uint64) string {
	return fmt.Sprintf("%v tokens", humanize.BigComma(new(big.Int).SetUint64(amount)))
}

func GramToTonString(gram int64) string {
	return fmt.Sprintf("%v Ton", humanize.Commaf(float64(gram)/1000000000))
}

func PercentString(percent uint8) string {
	return fmt.Sprintf("%v%%", percent)
}
