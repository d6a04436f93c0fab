package nacha

import (
	"fmt"
	"strings"

	"github.com/moov-io/ach"
)

// Verify parses file with the moov-io/ach reader, which applies the full NACHA
// rule set, and cross-checks its control totals against our own reading.
func Verify(file string) error {
	parsed, err := ach.NewReader(strings.NewReader(file)).Read()
	if err != nil {
		return fmt.Errorf("nacha verify: %w", err)
	}

	totals, err := ParseControlTotals(file)
	if err != nil {
		return fmt.Errorf("nacha verify: %w", err)
	}
	if err := totals.Check(); err != nil {
		return fmt.Errorf("nacha verify: %w", err)
	}

	if got := int64(parsed.Control.TotalDebitEntryDollarAmountInFile); got != totals.FileTotalDebit {
		return fmt.Errorf("nacha verify: reader total debit %d, file control %d", got, totals.FileTotalDebit)
	}
	if got := int64(parsed.Control.TotalCreditEntryDollarAmountInFile); got != totals.FileTotalCredit {
		return fmt.Errorf("nacha verify: reader total credit %d, file control %d", got, totals.FileTotalCredit)
	}
	return nil
}

// ReturnReason describes an ACH return code such as R01
type ReturnReason struct {
	Code        string `json:"code"`
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

// LookupReturnReason resolves a NACHA return code. ok is false for unknown codes.
func LookupReturnReason(code string) (ReturnReason, bool) {
	rc := ach.LookupReturnCode(strings.ToUpper(strings.TrimSpace(code)))
	if rc == nil {
		return ReturnReason{}, false
	}
	return ReturnReason{Code: rc.Code, Reason: rc.Reason, Description: rc.Description}, true
}
