package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/kevin07696/ach-processor/internal/services/ach"
)

func feeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fee AMOUNT",
		Short: "Quote the ACH fee for an amount in cents (5000) or dollars (50.00)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := parseCents(args[0])
			if err != nil {
				return err
			}
			fee := ach.CalculateACHFee(cents)
			fmt.Fprintf(cmd.OutOrStdout(), "amount\t%s\nfee\t%s\n", ach.FormatAmount(cents), ach.FormatAmount(fee))
			return nil
		},
	}
}

// parseCents reads whole cents, or a dollar amount when the input has a decimal point
func parseCents(s string) (int64, error) {
	var cents int64
	if strings.Contains(s, ".") {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		shifted := d.Shift(2)
		if !shifted.Equal(shifted.Truncate(0)) {
			return 0, fmt.Errorf("amount %q has fractional cents", s)
		}
		cents = shifted.IntPart()
	} else {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		cents = n
	}
	if cents <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}
	return cents, nil
}
