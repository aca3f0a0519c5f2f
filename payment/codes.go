package payment

import (
	"os"
	"strings"
)

// CodeTable maps gateway result codes to terminal failure states. Daraja's
// codes are not fully documented and differ between environments, so the
// table is configuration: DARAJA_CANCEL_CODES and DARAJA_TIMEOUT_CODES
// (comma-separated) extend the defaults. Codes in neither set map to
// StatusFailedDaraja.
type CodeTable struct {
	cancelled map[string]bool
	timeout   map[string]bool
}

// Default classification observed from the live gateway: "1" and "1032" are
// user cancellations (1032 is also sent for duplicate requests), "1037" is the
// request timing out on the handset.
func DefaultCodeTable() CodeTable {
	return CodeTable{
		cancelled: map[string]bool{"1": true, "1032": true},
		timeout:   map[string]bool{"1037": true},
	}
}

func CodeTableFromEnv() CodeTable {
	t := DefaultCodeTable()
	for _, c := range splitCodes(os.Getenv("DARAJA_CANCEL_CODES")) {
		t.cancelled[c] = true
	}
	for _, c := range splitCodes(os.Getenv("DARAJA_TIMEOUT_CODES")) {
		t.timeout[c] = true
	}
	return t
}

func splitCodes(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Classify maps a non-success result code to its terminal failure state.
func (t CodeTable) Classify(code string) Status {
	switch {
	case t.cancelled[code]:
		return StatusCancelledByUser
	case t.timeout[code]:
		return StatusFailedTimeout
	}
	return StatusFailedDaraja
}
