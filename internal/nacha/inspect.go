package nacha

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/kevin07696/ach-processor/internal/domain"
)

// EntrySummary is one entry detail record read back from a file
type EntrySummary struct {
	TransactionCode domain.TransactionCode
	RoutingPrefix   string
	AccountNumber   string
	Name            string
	TraceNumber     string
	Amount          int64
}

// ControlTotals is what a file claims about itself next to what its entries add up to
type ControlTotals struct {
	Entries []EntrySummary

	BatchEntryHash   string
	FileEntryHash    string
	ComputedHash     string
	BatchTotalDebit  int64
	BatchTotalCredit int64
	FileTotalDebit   int64
	FileTotalCredit  int64
	EntryDebitSum    int64
	EntryCreditSum   int64
	FileEntryCount   int
	BatchCount       int
	BlockCount       int
	RecordCount      int
}

// EntryAmountSum is the sum of every entry amount regardless of direction
func (t *ControlTotals) EntryAmountSum() int64 {
	return t.EntryDebitSum + t.EntryCreditSum
}

// Check reports the first inconsistency between control records and entries
func (t *ControlTotals) Check() error {
	switch {
	case t.BatchEntryHash != t.FileEntryHash:
		return fmt.Errorf("batch entry hash %s differs from file entry hash %s", t.BatchEntryHash, t.FileEntryHash)
	case t.FileEntryHash != t.ComputedHash:
		return fmt.Errorf("file entry hash %s, entries hash to %s", t.FileEntryHash, t.ComputedHash)
	case t.FileTotalDebit != t.EntryDebitSum:
		return fmt.Errorf("file total debit %d, entries sum to %d", t.FileTotalDebit, t.EntryDebitSum)
	case t.FileTotalCredit != t.EntryCreditSum:
		return fmt.Errorf("file total credit %d, entries sum to %d", t.FileTotalCredit, t.EntryCreditSum)
	case t.BatchTotalDebit != t.FileTotalDebit || t.BatchTotalCredit != t.FileTotalCredit:
		return fmt.Errorf("batch totals %d/%d differ from file totals %d/%d", t.BatchTotalDebit, t.BatchTotalCredit, t.FileTotalDebit, t.FileTotalCredit)
	case t.FileEntryCount != len(t.Entries):
		return fmt.Errorf("file control counts %d entries, found %d", t.FileEntryCount, len(t.Entries))
	}
	return nil
}

// ParseControlTotals decodes every record of a file produced by Formatter.
// Blank lines and block padding records (all 9s) are skipped.
func ParseControlTotals(file string) (*ControlTotals, error) {
	totals := &ControlTotals{}
	var hash int64

	scanner := bufio.NewScanner(strings.NewReader(file))
	line := 0
	for scanner.Scan() {
		line++
		record := strings.TrimRight(scanner.Text(), "\r")
		if record == "" || record == strings.Repeat("9", RecordLength) {
			continue
		}

		layout, ok := layoutFor(record[0])
		if !ok {
			return nil, fmt.Errorf("line %d: unknown record type %q", line, record[0])
		}
		fields, err := layout.Decode(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		totals.RecordCount++

		switch layout.Name {
		case EntryDetailLayout.Name:
			entry, err := entrySummary(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			prefix, _ := strconv.ParseInt(entry.RoutingPrefix, 10, 64)
			hash += prefix
			if entry.TransactionCode.IsCredit() {
				totals.EntryCreditSum += entry.Amount
			} else {
				totals.EntryDebitSum += entry.Amount
			}
			totals.Entries = append(totals.Entries, entry)
		case BatchControlLayout.Name:
			totals.BatchEntryHash = fields[FieldEntryHash]
			if totals.BatchTotalDebit, err = parseAmount(fields[FieldTotalDebit]); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if totals.BatchTotalCredit, err = parseAmount(fields[FieldTotalCredit]); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		case FileControlLayout.Name:
			totals.FileEntryHash = fields[FieldEntryHash]
			if totals.FileTotalDebit, err = parseAmount(fields[FieldTotalDebit]); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if totals.FileTotalCredit, err = parseAmount(fields[FieldTotalCredit]); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			totals.FileEntryCount, _ = strconv.Atoi(fields[FieldEntryAddendaCount])
			totals.BatchCount, _ = strconv.Atoi(fields[FieldBatchCount])
			totals.BlockCount, _ = strconv.Atoi(fields[FieldBlockCount])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if totals.FileEntryHash == "" {
		return nil, fmt.Errorf("file control record not found")
	}

	totals.ComputedHash = fmt.Sprintf("%010d", hash%entryHashModulus)
	return totals, nil
}

func entrySummary(fields map[string]string) (EntrySummary, error) {
	amount, err := parseAmount(fields[FieldAmount])
	if err != nil {
		return EntrySummary{}, err
	}
	return EntrySummary{
		TransactionCode: domain.TransactionCode(fields[FieldTransactionCode]),
		RoutingPrefix:   fields[FieldReceivingDFI],
		AccountNumber:   fields[FieldDFIAccountNumber],
		Name:            fields[FieldIndividualName],
		TraceNumber:     fields[FieldTraceNumber],
		Amount:          amount,
	}, nil
}

func parseAmount(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}
