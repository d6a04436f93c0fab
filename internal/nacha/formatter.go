// Package nacha encodes ACH payment requests into NACHA fixed-width files
package nacha

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kevin07696/ach-processor/internal/domain"
)

const (
	entryHashModulus = 10_000_000_000
	blockingFactor   = 10

	// MetadataIndividualID is the request metadata key copied into the entry's
	// individual identification number
	MetadataIndividualID = "individual_id"
	// MetadataTraceNumber carries the trace number assigned when the payment
	// was accepted, so the file entry matches it on returns
	MetadataTraceNumber = "trace_number"
)

// Config holds the originator identity written into file and batch headers
type Config struct {
	ImmediateDestination     string
	ImmediateDestinationName string
	ImmediateOrigin          string
	ImmediateOriginName      string
	CompanyName              string
	CompanyID                string
	CompanyDiscretionaryData string
	OriginRoutingNumber      string
	EntryDescription         string
	FileIDModifier           string
	ReferenceCode            string
}

// BusinessDays supplies the default effective entry date
type BusinessDays interface {
	NextBusinessDay(t time.Time) time.Time
}

// Formatter builds single-batch PPD files. It holds no mutable state and is
// safe for concurrent use.
type Formatter struct {
	dates BusinessDays
	cfg   Config
}

// NewFormatter creates a formatter
func NewFormatter(cfg Config, dates BusinessDays) *Formatter {
	if cfg.EntryDescription == "" {
		cfg.EntryDescription = "PAYMENT"
	}
	if cfg.FileIDModifier == "" {
		cfg.FileIDModifier = "A"
	}
	return &Formatter{cfg: cfg, dates: dates}
}

// GenerateFile renders entries as file header, batch header, one entry detail per
// request, batch control and file control, joined by newlines.
func (f *Formatter) GenerateFile(entries []*domain.ACHPaymentRequest, now time.Time) (string, error) {
	if len(entries) == 0 {
		return "", domain.ErrEmptyBatch
	}

	odfi := prefix8(f.cfg.OriginRoutingNumber)
	if len(odfi) != 8 {
		return "", &EncodeError{Record: BatchHeaderLayout.Name, Field: FieldOriginatingDFI, Reason: "origin routing number must have at least 8 digits"}
	}
	batchNumber := "1"

	records := make([]string, 0, len(entries)+4)

	header, err := FileHeaderLayout.Encode(map[string]string{
		FieldImmediateDestination:     f.cfg.ImmediateDestination,
		FieldImmediateOrigin:          f.cfg.ImmediateOrigin,
		FieldFileCreationDate:         now.Format("060102"),
		FieldFileCreationTime:         now.Format("1504"),
		FieldFileIDModifier:           f.cfg.FileIDModifier,
		FieldImmediateDestinationName: f.cfg.ImmediateDestinationName,
		FieldImmediateOriginName:      f.cfg.ImmediateOriginName,
		FieldReferenceCode:            f.cfg.ReferenceCode,
	})
	if err != nil {
		return "", err
	}
	records = append(records, header)

	batchHeader, err := BatchHeaderLayout.Encode(map[string]string{
		FieldCompanyName:              f.cfg.CompanyName,
		FieldCompanyDiscretionaryData: f.cfg.CompanyDiscretionaryData,
		FieldCompanyIdentification:    f.cfg.CompanyID,
		FieldEntryDescription:         f.cfg.EntryDescription,
		FieldDescriptiveDate:          now.Format("060102"),
		FieldEffectiveEntryDate:       f.effectiveDate(entries, now).Format("060102"),
		FieldOriginatingDFI:           odfi,
		FieldBatchNumber:              batchNumber,
	})
	if err != nil {
		return "", err
	}
	records = append(records, batchHeader)

	var hash, totalDebit, totalCredit, lastSequence int64
	for i, req := range entries {
		if req == nil || req.BankAccount == nil {
			return "", &EncodeError{Record: EntryDetailLayout.Name, Reason: fmt.Sprintf("entry %d has no bank account", i)}
		}
		acct := req.BankAccount
		rdfi := acct.RoutingPrefix()
		routePrefix, err := strconv.ParseInt(rdfi, 10, 64)
		if err != nil || len(acct.RoutingNumber) != 9 {
			return "", &EncodeError{Record: EntryDetailLayout.Name, Field: FieldReceivingDFI, Reason: fmt.Sprintf("entry %d has malformed routing number", i)}
		}
		if req.Amount <= 0 {
			return "", &EncodeError{Record: EntryDetailLayout.Name, Field: FieldAmount, Reason: fmt.Sprintf("entry %d amount must be positive", i)}
		}

		trace, sequence, err := entryTrace(odfi, req.Metadata[MetadataTraceNumber], lastSequence)
		if err != nil {
			return "", &EncodeError{Record: EntryDetailLayout.Name, Field: FieldTraceNumber, Reason: fmt.Sprintf("entry %d %v", i, err)}
		}
		lastSequence = sequence

		code := domain.TransactionCodeFor(req.Direction, acct.AccountType)
		entry, err := EntryDetailLayout.Encode(map[string]string{
			FieldTransactionCode:   string(code),
			FieldReceivingDFI:      rdfi,
			FieldCheckDigit:        acct.CheckDigit(),
			FieldDFIAccountNumber:  acct.AccountNumber,
			FieldAmount:            strconv.FormatInt(req.Amount, 10),
			FieldIndividualID:      req.Metadata[MetadataIndividualID],
			FieldIndividualName:    acct.AccountHolderName,
			FieldDiscretionaryData: "",
			FieldTraceNumber:       trace,
		})
		if err != nil {
			return "", err
		}
		records = append(records, entry)

		hash += routePrefix
		if code.IsCredit() {
			totalCredit += req.Amount
		} else {
			totalDebit += req.Amount
		}
	}

	entryHash := fmt.Sprintf("%010d", hash%entryHashModulus)
	count := strconv.Itoa(len(entries))

	batchControl, err := BatchControlLayout.Encode(map[string]string{
		FieldEntryAddendaCount:     count,
		FieldEntryHash:             entryHash,
		FieldTotalDebit:            strconv.FormatInt(totalDebit, 10),
		FieldTotalCredit:           strconv.FormatInt(totalCredit, 10),
		FieldCompanyIdentification: f.cfg.CompanyID,
		FieldOriginatingDFI:        odfi,
		FieldBatchNumber:           batchNumber,
	})
	if err != nil {
		return "", err
	}
	records = append(records, batchControl)

	// the file control record itself counts toward the block total
	blocks := (len(records) + 1 + blockingFactor - 1) / blockingFactor
	fileControl, err := FileControlLayout.Encode(map[string]string{
		FieldBatchCount:        "1",
		FieldBlockCount:        strconv.Itoa(blocks),
		FieldEntryAddendaCount: count,
		FieldEntryHash:         entryHash,
		FieldTotalDebit:        strconv.FormatInt(totalDebit, 10),
		FieldTotalCredit:       strconv.FormatInt(totalCredit, 10),
	})
	if err != nil {
		return "", err
	}
	records = append(records, fileControl)

	return strings.Join(records, "\n"), nil
}

// effectiveDate is the earliest caller-supplied effective date, or the next
// business day after now when no entry carries one
func (f *Formatter) effectiveDate(entries []*domain.ACHPaymentRequest, now time.Time) time.Time {
	var earliest *time.Time
	for _, e := range entries {
		if e == nil || e.EffectiveDate == nil {
			continue
		}
		if earliest == nil || e.EffectiveDate.Before(*earliest) {
			earliest = e.EffectiveDate
		}
	}
	if earliest != nil {
		return *earliest
	}
	if f.dates == nil {
		return now.AddDate(0, 0, 1)
	}
	return f.dates.NextBusinessDay(now)
}

// TraceNumber joins an 8-digit ODFI prefix and a 7-digit sequence
func TraceNumber(odfi string, sequence int64) string {
	return fmt.Sprintf("%s%07d", prefix8(odfi), sequence%10_000_000)
}

// entryTrace keeps a carried trace number or takes the next sequence after last.
// Trace numbers in a batch must start with the ODFI and ascend.
func entryTrace(odfi, carried string, last int64) (string, int64, error) {
	if carried == "" {
		return TraceNumber(odfi, last+1), last + 1, nil
	}
	if len(carried) != 15 || !strings.HasPrefix(carried, odfi) {
		return "", 0, fmt.Errorf("trace number %q must be 15 digits starting with %s", carried, odfi)
	}
	var sequence int64
	for _, c := range carried[8:] {
		if c < '0' || c > '9' {
			return "", 0, fmt.Errorf("trace number %q is not numeric", carried)
		}
		sequence = sequence*10 + int64(c-'0')
	}
	if sequence <= last {
		return "", 0, fmt.Errorf("trace number %s does not ascend", carried)
	}
	return carried, sequence, nil
}

func prefix8(routing string) string {
	if len(routing) > 8 {
		return routing[:8]
	}
	return routing
}
