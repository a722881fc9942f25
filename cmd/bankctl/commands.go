package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	apperrors "bankbook/internal/errors"
	"bankbook/internal/ledger"
	"bankbook/internal/models"
)

func applyCmd(get func() *env) *cobra.Command {
	var (
		draft  ledger.Draft
		amount string
		date   string
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a debit, credit or transfer",
		Long: `Validate a transaction and apply it to the named accounts and budget.

  bankctl apply --kind debit --amount 50 --from Checking --budget Food --month June
  bankctl apply --kind transfer --amount 200 --from Checking --to Savings`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}
			draft.Amount = amt
			if date != "" {
				parsed, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid --date %q, use YYYY-MM-DD", date)
				}
				draft.Date = parsed
			}
			if draft.ID != "" {
				if _, err := uuid.Parse(draft.ID); err != nil {
					return describe(apperrors.WithDetails(
						apperrors.WithMessage(apperrors.ErrInvalidInput, "--id must be a UUID"),
						map[string]any{"id": draft.ID}))
				}
			}

			txn, err := ledger.NewTransaction(draft)
			if err != nil {
				return describe(err)
			}
			applied, err := get().engine.Apply(cmd.Context(), txn)
			if err != nil {
				return describe(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "applied %s %s %s\n", applied.Kind(), applied.Amount, applied.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&draft.Kind, "kind", "", "debit, credit or transfer")
	f.StringVar(&amount, "amount", "", "amount, greater than zero")
	f.StringVar(&date, "date", "", "transaction date (YYYY-MM-DD, default today)")
	f.StringVar(&draft.ID, "id", "", "transaction id (default generated)")
	f.StringVar(&draft.OriginAccount, "from", "", "origin account name")
	f.StringVar(&draft.DestinationAccount, "to", "", "destination account name")
	f.StringVar(&draft.Budget, "budget", "", "budget name")
	f.StringVar(&draft.BudgetMonth, "month", "", "budget month name")
	f.StringVar(&draft.Category, "category", "", "category (default Unknown)")
	f.StringVar(&draft.Recipient, "recipient", "", "recipient")
	f.StringVar(&draft.Description, "description", "", "description")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func reverseCmd(get func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "reverse <transaction-id>",
		Short: "Undo an applied transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reversed, err := get().engine.Reverse(cmd.Context(), args[0])
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reversed %s %s %s\n", reversed.Kind(), reversed.Amount, reversed.ID)
			return nil
		},
	}
}

func accountsCmd(get func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List accounts and balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var accounts []models.Account
			if err := get().db.WithContext(cmd.Context()).Order("name ASC").Find(&accounts).Error; err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}

			return writeTable(cmd.OutOrStdout(), []string{"NAME", "KIND", "BALANCE"}, func(row func(...any)) {
				for _, a := range accounts {
					row(a.Name, a.Kind, a.Balance.StringFixed(2))
				}
			})
		},
	}
}

func budgetsCmd(get func() *env) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "List budgets and remaining amounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := get().db.WithContext(cmd.Context()).Model(&models.Budget{})
			if month != "" {
				canonical, ok := ledger.NormalizeMonth(month)
				if !ok {
					return fmt.Errorf("invalid --month %q", month)
				}
				q = q.Where("month = ?", canonical)
			}

			var budgets []models.Budget
			if err := q.Order("name ASC").Find(&budgets).Error; err != nil {
				return fmt.Errorf("failed to list budgets: %w", err)
			}
			sortByCalendar(budgets)

			return writeTable(cmd.OutOrStdout(), []string{"NAME", "MONTH", "AMOUNT"}, func(row func(...any)) {
				for _, b := range budgets {
					row(b.Name, b.Month, b.Amount.StringFixed(2))
				}
			})
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "only show budgets for this month")
	return cmd
}

// sortByCalendar orders budgets by name, then by month in calendar order.
func sortByCalendar(budgets []models.Budget) {
	index := func(month string) int {
		for m := time.January; m <= time.December; m++ {
			if m.String() == month {
				return int(m)
			}
		}
		return 13
	}
	sort.SliceStable(budgets, func(i, j int) bool {
		if budgets[i].Name != budgets[j].Name {
			return budgets[i].Name < budgets[j].Name
		}
		return index(budgets[i].Month) < index(budgets[j].Month)
	})
}

func writeTable(out io.Writer, header []string, rows func(row func(...any))) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	rows(func(cols ...any) {
		parts := make([]string, len(cols))
		for i, c := range cols {
			parts[i] = fmt.Sprint(c)
		}
		fmt.Fprintln(w, strings.Join(parts, "\t"))
	})
	return w.Flush()
}

// describe renders ledger errors with their code and details.
func describe(err error) error {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return err
	}
	msg := appErr.Code + ": " + appErr.Message
	if len(appErr.Details) > 0 {
		keys := make([]string, 0, len(appErr.Details))
		for k := range appErr.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = fmt.Sprintf("%s=%v", k, appErr.Details[k])
		}
		msg += " (" + strings.Join(pairs, " ") + ")"
	}
	return &cliError{msg: msg, err: err}
}

type cliError struct {
	msg string
	err error
}

func (e *cliError) Error() string { return e.msg }
func (e *cliError) Unwrap() error { return e.err }
