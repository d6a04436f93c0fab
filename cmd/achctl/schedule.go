package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kevin07696/ach-processor/internal/calendar"
	"github.com/kevin07696/ach-processor/internal/domain"
	"github.com/kevin07696/ach-processor/pkg/timeutil"
)

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Recurring payment date utilities",
	}

	var (
		from      string
		frequency string
		count     int
		holidays  string
	)

	next := &cobra.Command{
		Use:   "next",
		Short: "Print the next business-day payment dates of a recurring schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := timeutil.ParseDate(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			freq := domain.Frequency(frequency)
			if !freq.IsValid() {
				return fmt.Errorf("--frequency %q is not one of weekly, biweekly, monthly, quarterly, annually", frequency)
			}
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}

			cal := calendar.NewBusinessCalendar(calendar.ByName(holidays))
			date := start
			for i := 0; i < count; i++ {
				date = cal.CalculateNextPaymentDate(date, freq)
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", i+1, timeutil.FormatDate(date), date.Weekday())
			}
			return nil
		},
	}

	next.Flags().StringVar(&from, "from", timeutil.FormatDate(timeutil.Now()), "start date (YYYY-MM-DD)")
	next.Flags().StringVarP(&frequency, "frequency", "f", string(domain.FrequencyMonthly), "weekly, biweekly, monthly, quarterly or annually")
	next.Flags().IntVarP(&count, "count", "n", 1, "number of dates to print")
	next.Flags().StringVar(&holidays, "holidays", "none", "holiday calendar: none or federal_reserve")

	cmd.AddCommand(next)
	return cmd
}
