package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/ach-processor/internal/nacha"
)

const batchYAML = `
originator:
  name: Acme Utilities
  company_id: "1234567890"
  origin_routing_number: "021000021"
  immediate_destination_name: FEDERAL RESERVE
holiday_calendar: federal_reserve
entries:
  - amount: 5000
    description: June invoice
    bank_account:
      routing_number: "021000021"
      account_number: "1234567890"
      account_type: checking
      account_holder_name: Jane Doe
      account_holder_type: individual
  - amount: 2500
    direction: credit
    description: Refund
    bank_account:
      routing_number: "026009593"
      account_number: "555000111"
      account_type: savings
      account_holder_name: John Roe
      account_holder_type: individual
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoutingValidate(t *testing.T) {
	out, err := run(t, "routing", "validate", "021000021", "026009593")
	require.NoError(t, err)
	assert.Equal(t, "021000021\tvalid\n026009593\tvalid\n", out)

	out, err = run(t, "routing", "validate", "021000021", "123456789")
	require.Error(t, err)
	assert.Contains(t, out, "123456789\tinvalid")
	assert.Contains(t, err.Error(), "1 of 2")
}

func TestFee(t *testing.T) {
	out, err := run(t, "fee", "5000")
	require.NoError(t, err)
	assert.Equal(t, "amount\t50.00\nfee\t0.30\n", out)

	out, err = run(t, "fee", "50.00")
	require.NoError(t, err)
	assert.Equal(t, "amount\t50.00\nfee\t0.30\n", out)

	out, err = run(t, "fee", "200000")
	require.NoError(t, err)
	assert.Equal(t, "amount\t2000.00\nfee\t1.50\n", out)
}

func TestParseCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"5000", 5000, false},
		{"50.00", 5000, false},
		{"0.01", 1, false},
		{"12.5", 1250, false},
		{"1.005", 0, true},
		{"0", 0, true},
		{"-5", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCents(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScheduleNext(t *testing.T) {
	// 2025-07-05 is a Saturday, so the first monthly date rolls to Monday
	out, err := run(t, "schedule", "next", "--from", "2025-06-05", "-f", "monthly", "-n", "2")
	require.NoError(t, err)
	assert.Equal(t, "1\t2025-07-07\tMonday\n2\t2025-08-07\tThursday\n", out)

	_, err = run(t, "schedule", "next", "--from", "2025-06-05", "-f", "daily")
	assert.Error(t, err)

	_, err = run(t, "schedule", "next", "--from", "June 5")
	assert.Error(t, err)
}

func TestReturnsLookup(t *testing.T) {
	out, err := run(t, "returns", "lookup", "r01")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "R01\t"))

	_, err = run(t, "returns", "lookup", "X99")
	assert.Error(t, err)
}

func TestLoadBatch_Defaults(t *testing.T) {
	b, err := loadBatch(strings.NewReader(batchYAML))
	require.NoError(t, err)

	assert.Equal(t, "021000021", b.Originator.ImmediateDestination)
	assert.Equal(t, "021000021", b.Originator.ImmediateOrigin)
	assert.Equal(t, "Acme Utilities", b.Originator.ImmediateOriginName)
	assert.Equal(t, "PAYMENT", b.Originator.EntryDescription)
	assert.Equal(t, "A", b.Originator.FileIDModifier)
	require.Len(t, b.Entries, 2)
	assert.Equal(t, "usd", b.Entries[0].Currency)
}

func TestLoadBatch_Errors(t *testing.T) {
	_, err := loadBatch(strings.NewReader("originator:\n  name: x\n"))
	assert.Error(t, err, "origin routing number is required")

	_, err = loadBatch(strings.NewReader("originator:\n  origin_routing_number: \"021000021\"\n  colour: red\n"))
	assert.Error(t, err, "unknown fields are rejected")
}

func TestGenerate(t *testing.T) {
	b, err := loadBatch(strings.NewReader(batchYAML))
	require.NoError(t, err)

	now := func() time.Time { return time.Date(2025, 6, 6, 15, 0, 0, 0, time.UTC) }
	file, err := generate(context.Background(), b, false, now)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(file, "\n"), "\n")
	require.Len(t, lines, 6)
	for _, l := range lines {
		assert.Len(t, l, nacha.RecordLength)
	}
	assert.True(t, strings.HasPrefix(lines[2], "627"))
	assert.True(t, strings.HasPrefix(lines[3], "632"))

	totals, err := nacha.ParseControlTotals(file)
	require.NoError(t, err)
	require.NoError(t, totals.Check())
	assert.Equal(t, int64(5000), totals.FileTotalDebit)
	assert.Equal(t, int64(2500), totals.FileTotalCredit)
}

func TestGenerate_InvalidEntry(t *testing.T) {
	b, err := loadBatch(strings.NewReader(batchYAML))
	require.NoError(t, err)
	b.Entries[1].BankAccount.RoutingNumber = "123456789"

	_, err = generate(context.Background(), b, false, time.Now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestNachaGenerateAndInspect(t *testing.T) {
	dir := t.TempDir()
	batchPath := filepath.Join(dir, "batch.yaml")
	filePath := filepath.Join(dir, "out.ach")
	require.NoError(t, os.WriteFile(batchPath, []byte(batchYAML), 0o600))

	out, err := run(t, "nacha", "generate", batchPath, "-o", filePath)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 2 entries")

	out, err = run(t, "nacha", "inspect", filePath)
	require.NoError(t, err)
	assert.Contains(t, out, "JANE DOE")
	assert.Contains(t, out, "entries 2  debit 50.00  credit 25.00")
	assert.Contains(t, out, "control totals OK")
}

func TestNachaInspect_Tampered(t *testing.T) {
	b, err := loadBatch(strings.NewReader(batchYAML))
	require.NoError(t, err)
	file, err := generate(context.Background(), b, false, time.Now)
	require.NoError(t, err)

	lines := strings.Split(file, "\n")
	// bump the first entry amount without touching the controls
	entry := []byte(lines[2])
	copy(entry[29:39], "0000009999")
	lines[2] = string(entry)

	path := filepath.Join(t.TempDir(), "tampered.ach")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o600))

	_, err = run(t, "nacha", "inspect", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "control totals do not match")
}
