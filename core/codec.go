package core

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Header names carrying a session on each request.
const (
	HeaderAuthorization = "Authorization"
	HeaderWalletAddress = "X-Wallet-Address"
	HeaderAuthMessage   = "X-Auth-Message"
	HeaderAuthTimestamp = "X-Auth-Timestamp"
)

const bearerPrefix = "Bearer "

// AuthHeaderNames lists the headers in the order they are encoded.
var AuthHeaderNames = []string{
	HeaderAuthorization,
	HeaderWalletAddress,
	HeaderAuthMessage,
	HeaderAuthTimestamp,
}

// Credentials are the decoded contents of the authentication headers.
type Credentials struct {
	Identity        string
	Message         string
	Signature       []byte
	TimestampMillis int64
}

// EncodeHeaders renders a session into request headers. The result is all or
// nothing: if any value would be empty or carry a control character the
// returned header set is empty.
func EncodeHeaders(s Session) http.Header {
	if len(s.Signature) == 0 || s.Message == "" || s.TimestampMillis == 0 {
		return http.Header{}
	}
	values := map[string]string{
		HeaderAuthorization: bearerPrefix + base64.StdEncoding.EncodeToString(s.Signature),
		HeaderWalletAddress: s.Identity,
		HeaderAuthMessage:   base64.StdEncoding.EncodeToString([]byte(s.Message)),
		HeaderAuthTimestamp: FormatTimestamp(s.TimestampMillis),
	}

	h := make(http.Header, len(values))
	for _, name := range AuthHeaderNames {
		v := values[name]
		if !ValidHeaderValue(v) {
			return http.Header{}
		}
		h.Set(name, v)
	}
	return h
}

// DecodeHeaders extracts credentials from request headers.
func DecodeHeaders(h http.Header) (Credentials, error) {
	authHeader := h.Get(HeaderAuthorization)
	address := h.Get(HeaderWalletAddress)
	encodedMessage := h.Get(HeaderAuthMessage)
	timestamp := h.Get(HeaderAuthTimestamp)

	if authHeader == "" || address == "" || encodedMessage == "" || timestamp == "" {
		return Credentials{}, ErrMissingHeaders
	}
	for _, v := range []string{authHeader, address, encodedMessage, timestamp} {
		if !ValidHeaderValue(v) {
			return Credentials{}, fmt.Errorf("%w: control character in header value", ErrMalformedHeader)
		}
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return Credentials{}, fmt.Errorf("%w: authorization is not a bearer credential", ErrMalformedHeader)
	}
	signature, err := decodeSignature(authHeader[len(bearerPrefix):])
	if err != nil {
		return Credentials{}, err
	}

	message, err := base64.StdEncoding.DecodeString(encodedMessage)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: message is not base64", ErrMalformedHeader)
	}
	if !utf8.Valid(message) {
		return Credentials{}, fmt.Errorf("%w: message is not utf-8", ErrMalformedHeader)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: timestamp is not a decimal integer", ErrMalformedHeader)
	}

	return Credentials{
		Identity:        address,
		Message:         string(message),
		Signature:       signature,
		TimestampMillis: ts,
	}, nil
}

func decodeSignature(encoded string) ([]byte, error) {
	if strings.Contains(encoded, ",") {
		return nil, ErrLegacySignatureFormat
	}
	if encoded == "" {
		return nil, fmt.Errorf("%w: empty signature", ErrMalformedHeader)
	}
	sig, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: signature is not base64", ErrMalformedHeader)
	}
	return sig, nil
}

// ValidHeaderValue reports whether v is non-empty and free of ASCII control characters.
func ValidHeaderValue(v string) bool {
	if v == "" {
		return false
	}
	for i := 0; i < len(v); i++ {
		if c := v[i]; c < 0x20 || c == 0x7f {
			return false
		}
	}
	return true
}
