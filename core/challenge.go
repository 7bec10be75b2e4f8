package core

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const nonceBytes = 8

const timestampLinePrefix = "Timestamp: "

const challengeTemplate = `Token Metadata CMS Authentication

Action: %s
Timestamp: %d
Nonce: %s

Please sign this message to verify your wallet ownership.
This signature will not trigger any blockchain transaction.`

// Challenge is the message a wallet signs to prove control of its key.
type Challenge struct {
	Action          string
	TimestampMillis int64
	Nonce           string
}

// BuildChallenge creates a challenge for action at timestampMillis with a fresh nonce.
func BuildChallenge(action string, timestampMillis int64) (Challenge, error) {
	nonce, err := newNonce()
	if err != nil {
		return Challenge{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return Challenge{
		Action:          action,
		TimestampMillis: timestampMillis,
		Nonce:           nonce,
	}, nil
}

// Message renders the challenge into the text presented to the wallet.
func (c Challenge) Message() string {
	return fmt.Sprintf(challengeTemplate, c.Action, c.TimestampMillis, c.Nonce)
}

// Time returns the challenge timestamp.
func (c Challenge) Time() time.Time {
	return time.UnixMilli(c.TimestampMillis)
}

func newNonce() (string, error) {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return new(big.Int).SetBytes(buf).Text(36), nil
}

// FormatTimestamp renders milliseconds the way X-Auth-Timestamp carries them.
func FormatTimestamp(timestampMillis int64) string {
	return strconv.FormatInt(timestampMillis, 10)
}

// MessageTimestamp extracts the timestamp line of a challenge message. It
// reports false when message carries no well-formed timestamp line.
func MessageTimestamp(message string) (int64, bool) {
	for _, line := range strings.Split(message, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimRight(line, "\r"), timestampLinePrefix)
		if !ok {
			continue
		}
		ms, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return 0, false
		}
		return ms, true
	}
	return 0, false
}
