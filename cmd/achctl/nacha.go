package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kevin07696/ach-processor/internal/adapters/memory"
	"github.com/kevin07696/ach-processor/internal/adapters/tokenizer"
	"github.com/kevin07696/ach-processor/internal/calendar"
	"github.com/kevin07696/ach-processor/internal/domain"
	"github.com/kevin07696/ach-processor/internal/nacha"
	"github.com/kevin07696/ach-processor/internal/services/ach"
	"github.com/kevin07696/ach-processor/internal/services/outbox"
	"github.com/kevin07696/ach-processor/pkg/security"
)

// Batch is the YAML input of `nacha generate`
type Batch struct {
	Originator      Originator                  `yaml:"originator"`
	HolidayCalendar string                      `yaml:"holiday_calendar"`
	Entries         []*domain.ACHPaymentRequest `yaml:"entries"`
}

// Originator identifies the company and ODFI sending the file
type Originator struct {
	Name                     string `yaml:"name"`
	CompanyID                string `yaml:"company_id"`
	OriginRoutingNumber      string `yaml:"origin_routing_number"`
	ImmediateDestination     string `yaml:"immediate_destination"`
	ImmediateDestinationName string `yaml:"immediate_destination_name"`
	ImmediateOrigin          string `yaml:"immediate_origin"`
	ImmediateOriginName      string `yaml:"immediate_origin_name"`
	EntryDescription         string `yaml:"entry_description"`
	FileIDModifier           string `yaml:"file_id_modifier"`
}

func loadBatch(r io.Reader) (*Batch, error) {
	var b Batch
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}

	o := &b.Originator
	if o.OriginRoutingNumber == "" {
		return nil, fmt.Errorf("originator.origin_routing_number is required")
	}
	if o.ImmediateDestination == "" {
		o.ImmediateDestination = o.OriginRoutingNumber
	}
	if o.ImmediateOrigin == "" {
		o.ImmediateOrigin = o.OriginRoutingNumber
	}
	if o.ImmediateOriginName == "" {
		o.ImmediateOriginName = o.Name
	}
	if o.EntryDescription == "" {
		o.EntryDescription = "PAYMENT"
	}
	if o.FileIDModifier == "" {
		o.FileIDModifier = "A"
	}
	for _, e := range b.Entries {
		if e != nil && e.Currency == "" {
			e.Currency = "usd"
		}
	}
	return &b, nil
}

// generate runs the batch through the processor so entries get the same
// validation the API applies
func generate(ctx context.Context, b *Batch, verify bool, now func() time.Time) (string, error) {
	logger := security.NewZapLogger(zap.NewNop())
	cal := calendar.NewBusinessCalendar(calendar.ByName(b.HolidayCalendar))
	o := b.Originator

	formatter := nacha.NewFormatter(nacha.Config{
		ImmediateDestination:     o.ImmediateDestination,
		ImmediateDestinationName: o.ImmediateDestinationName,
		ImmediateOrigin:          o.ImmediateOrigin,
		ImmediateOriginName:      o.ImmediateOriginName,
		CompanyName:              o.Name,
		CompanyID:                o.CompanyID,
		OriginRoutingNumber:      o.OriginRoutingNumber,
		EntryDescription:         o.EntryDescription,
		FileIDModifier:           o.FileIDModifier,
	}, cal)

	processor := ach.NewProcessor(ach.Config{
		OriginatorName:      o.Name,
		CompanyID:           o.CompanyID,
		OriginRoutingNumber: o.OriginRoutingNumber,
		TestMode:            true,
		StrictNACHAVerify:   verify,
	},
		ach.NewValidator(true, memory.NewVerificationStore(), nil, logger),
		tokenizer.NewMemoryTokenizer(),
		outbox.NewQueue(memory.NewOutboxStore(), logger),
		cal, formatter, logger,
		ach.WithClock(now),
	)

	return processor.GenerateNACHAFile(ctx, b.Entries)
}

func nachaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nacha",
		Short: "Generate and inspect NACHA files",
	}
	cmd.AddCommand(nachaGenerateCmd())
	cmd.AddCommand(nachaInspectCmd())
	return cmd
}

func nachaGenerateCmd() *cobra.Command {
	var (
		out    string
		verify bool
	)

	cmd := &cobra.Command{
		Use:   "generate BATCH.yaml",
		Short: "Encode a YAML batch of entries as a NACHA PPD file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			batch, err := loadBatch(f)
			if err != nil {
				return err
			}

			file, err := generate(cmd.Context(), batch, verify, time.Now)
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), file)
				return err
			}
			if err := os.WriteFile(out, []byte(file), 0o600); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d entries to %s\n", len(batch.Entries), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&verify, "verify", false, "re-read the file with the moov-io/ach parser before writing")
	return cmd
}

func nachaInspectCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print entries and control totals of a NACHA file and check they agree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			file := string(raw)

			totals, err := nacha.ParseControlTotals(file)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TRACE\tCODE\tRDFI\tNAME\tAMOUNT")
			for _, e := range totals.Entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.TraceNumber, e.TransactionCode, e.RoutingPrefix, e.Name, ach.FormatAmount(e.Amount))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nentries %d  debit %s  credit %s  hash %s\n",
				totals.FileEntryCount, ach.FormatAmount(totals.FileTotalDebit), ach.FormatAmount(totals.FileTotalCredit), totals.FileEntryHash)

			if err := totals.Check(); err != nil {
				return fmt.Errorf("control totals do not match: %w", err)
			}
			if strict {
				if err := nacha.Verify(file); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "control totals OK")
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "also validate with the moov-io/ach parser")
	return cmd
}
