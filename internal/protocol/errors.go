package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by the indexer when it has no record for a coin.
var ErrNotFound = errors.New("coin not indexed")

// ErrInvalidRecord is returned when an upstream payload fails validation.
var ErrInvalidRecord = errors.New("invalid upstream record")

type Kind string

const (
	KindInsufficientBalance Kind = "insufficient_balance"
	KindSlippageExceeded    Kind = "slippage_exceeded"
	KindNetwork             Kind = "network"
	KindGas                 Kind = "gas"
	KindUserRejected        Kind = "user_rejected"
	KindUnknown             Kind = "unknown"
)

var kindMessages = map[Kind]string{
	KindInsufficientBalance: "Insufficient balance to complete this trade",
	KindSlippageExceeded:    "Price moved beyond your slippage tolerance, try again or raise slippage",
	KindNetwork:             "Network error, please try again",
	KindGas:                 "Transaction would fail: gas estimation failed",
	KindUserRejected:        "Transaction was rejected",
	KindUnknown:             "Trade failed due to an unknown error",
}

// Message is the user-facing text for k.
func (k Kind) Message() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return kindMessages[KindUnknown]
}

var codeKinds = map[string]Kind{
	"INSUFFICIENT_BALANCE":  KindInsufficientBalance,
	"INSUFFICIENT_FUNDS":    KindInsufficientBalance,
	"SLIPPAGE_EXCEEDED":     KindSlippageExceeded,
	"NETWORK_ERROR":         KindNetwork,
	"TIMEOUT":               KindNetwork,
	"GAS_ESTIMATION_FAILED": KindGas,
	"OUT_OF_GAS":            KindGas,
	"USER_REJECTED":         KindUserRejected,
	"4001":                  KindUserRejected,
}

// Checked in order; the first match wins.
var messageKinds = []struct {
	needle string
	kind   Kind
}{
	{"insufficient", KindInsufficientBalance},
	{"slippage", KindSlippageExceeded},
	{"user rejected", KindUserRejected},
	{"user denied", KindUserRejected},
	{"rejected", KindUserRejected},
	{"gas", KindGas},
	{"network", KindNetwork},
	{"timeout", KindNetwork},
	{"connection", KindNetwork},
}

// Classify maps an upstream error code and message onto a Kind. The code
// wins when it is known; otherwise the message is matched case-insensitively.
func Classify(code, message string) Kind {
	if k, ok := codeKinds[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return k
	}
	msg := strings.ToLower(message)
	for _, m := range messageKinds {
		if strings.Contains(msg, m.needle) {
			return m.kind
		}
	}
	return KindUnknown
}

// Error is a failed protocol call.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	detail := e.Message
	if detail == "" && e.Err != nil {
		detail = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Op, e.Kind, e.Status, detail)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}
