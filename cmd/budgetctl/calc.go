package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"budgetwise/internal/core"
	"budgetwise/internal/finance"
	"budgetwise/internal/format"
	"budgetwise/internal/payperiod"
)

func periodCmd() *cobra.Command {
	var (
		schedule    string
		date        string
		payDay      int
		lastPayDate string
		strict      bool
	)

	cmd := &cobra.Command{
		Use:   "period",
		Short: "Show the pay period containing a date",
		Example: `  budgetctl period --schedule bi-weekly --pay-day 5 --last-pay-date 2025-01-03
  budgetctl period --schedule monthly --pay-day 31 --last-pay-date 2025-01-31 --date 2025-02-10 --strict`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := core.ParsePaySchedule(schedule)
			if err != nil {
				return err
			}

			ref := core.Today()
			if date != "" {
				if ref, err = core.ParseDate(date); err != nil {
					return err
				}
			}

			var anchor *payperiod.Anchor
			if cmd.Flags().Changed("pay-day") {
				if err := core.ValidatePayDay(s, payDay); err != nil {
					return err
				}
				if lastPayDate != "" {
					last, err := core.ParseDate(lastPayDate)
					if err != nil {
						return err
					}
					anchor = &payperiod.Anchor{PayDay: payDay, LastPayDate: last}
				}
			}

			policy := payperiod.PayDayClamp
			if strict {
				policy = payperiod.PayDayStrict
			}

			p, err := payperiod.Compute(s, ref, anchor, payperiod.WithPayDayPolicy(policy))
			if err != nil {
				return err
			}
			printPeriod(cmd.OutOrStdout(), p)
			return nil
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "monthly", "pay schedule (weekly, bi-weekly, semi-monthly, monthly)")
	cmd.Flags().StringVar(&date, "date", "", "reference date, YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&payDay, "pay-day", 0, "pay day: weekday 0-6 or day of month 1-31")
	cmd.Flags().StringVar(&lastPayDate, "last-pay-date", "", "most recent pay date, YYYY-MM-DD")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject monthly pay days the month does not have")

	return cmd
}

func printPeriod(out io.Writer, p payperiod.Period) {
	mode := "calendar fallback"
	if p.Anchored() {
		mode = "anchored"
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Schedule:\t%s\n", p.Schedule)
	fmt.Fprintf(w, "Period:\t%s\n", format.DateRange(p.Start, p.End))
	fmt.Fprintf(w, "Days:\t%d\n", p.Days())
	fmt.Fprintf(w, "Next pay date:\t%s\n", p.NextPayDate())
	fmt.Fprintf(w, "Mode:\t%s\n", mode)
	w.Flush()
}

func allocateCmd() *cobra.Command {
	var income, fixed, investments, savings, guiltFree string

	defaults := finance.DefaultPercentages()

	cmd := &cobra.Command{
		Use:     "allocate",
		Short:   "Split an income across the four budget buckets",
		Example: `  budgetctl allocate --income 5000 --fixed 55 --investments 15 --savings 10 --guilt-free 20`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, err := core.ParseAmount(income)
			if err != nil {
				return err
			}
			if amount.IsNegative() {
				return fmt.Errorf("%w: income must not be negative", core.ErrInvalidAmount)
			}

			var p finance.Percentages
			for _, f := range []struct {
				raw string
				dst *decimal.Decimal
			}{
				{fixed, &p.FixedCosts},
				{investments, &p.Investments},
				{savings, &p.Savings},
				{guiltFree, &p.GuiltFreeSpending},
			} {
				if *f.dst, err = decimal.NewFromString(f.raw); err != nil {
					return fmt.Errorf("%w: %q", core.ErrInvalidPercentage, f.raw)
				}
			}
			if err := finance.ValidatePercentages(p); err != nil {
				return err
			}

			printAllocation(cmd.OutOrStdout(), amount, p)
			return nil
		},
	}

	cmd.Flags().StringVar(&income, "income", "", "income for the pay period")
	cmd.Flags().StringVar(&fixed, "fixed", defaults.FixedCosts.String(), "fixed costs percent")
	cmd.Flags().StringVar(&investments, "investments", defaults.Investments.String(), "investments percent")
	cmd.Flags().StringVar(&savings, "savings", defaults.Savings.String(), "savings percent")
	cmd.Flags().StringVar(&guiltFree, "guilt-free", defaults.GuiltFreeSpending.String(), "guilt-free spending percent")
	_ = cmd.MarkFlagRequired("income")

	return cmd
}

func printAllocation(out io.Writer, income decimal.Decimal, p finance.Percentages) {
	amounts := finance.Allocate(income, p)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, c := range core.Categories() {
		status := ""
		if r, ok := finance.Recommended(c); ok && !r.Contains(p.Get(c)) {
			status = "outside recommended range"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", c.Label(), format.PercentDecimal(p.Get(c)), format.Currency(amounts.Get(c)), status)
	}
	fmt.Fprintf(w, "Total\t\t%s\t\t\n", format.Currency(income))
	w.Flush()
}
