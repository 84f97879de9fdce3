package domain

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

const numberSuffixLen = 5

var (
	numberMu     sync.Mutex
	lastNumberMs int64
)

// NewOrderNumber returns a human-readable identifier of the form
// ORD-<time36>-<rand5>, upper-case. The time component is milliseconds since
// epoch in base 36 and is forced strictly increasing within the process, so
// numbers never collide no matter how quickly orders arrive.
func NewOrderNumber() string {
	numberMu.Lock()
	ms := time.Now().UnixMilli()
	if ms <= lastNumberMs {
		ms = lastNumberMs + 1
	}
	lastNumberMs = ms
	numberMu.Unlock()

	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffix := make([]byte, numberSuffixLen)
	for i := range suffix {
		suffix[i] = alphabet[rand.Intn(len(alphabet))]
	}

	return strings.ToUpper("ORD-" + strconv.FormatInt(ms, 36) + "-" + string(suffix))
}
