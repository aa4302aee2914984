package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/cashledger/internal/adapter/http/dto"
	"github.com/iho/cashledger/internal/infrastructure/logger"
	"github.com/iho/cashledger/internal/infrastructure/postgres"
)

var errReconciliationFailed = errors.New("ledger has discrepancies")

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// apiClient talks to the ledger HTTP API.
type apiClient struct {
	baseURL        string
	idempotencyKey string
	http           *http.Client
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("request failed (status %d): %s", e.Status, e.Message)
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.baseURL, "/")+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.idempotencyKey != "" && method != http.MethodGet {
		req.Header.Set("Idempotency-Key", c.idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var e dto.ErrorResponse
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
			if e.Message != "" {
				msg += ": " + e.Message
			}
		}
		return &apiError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func newRootCmd(out io.Writer) *cobra.Command {
	client := &apiClient{}
	var timeout time.Duration

	rootCmd := &cobra.Command{
		Use:           "cashledger-cli",
		Short:         "Cashledger CLI tool",
		Long:          `A command line interface for interacting with the Cashledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			client.http = &http.Client{Timeout: timeout}
		},
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&client.baseURL, "url", "http://localhost:8080", "Base URL of the Cashledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&client.idempotencyKey, "idempotency-key", "", "Idempotency key sent with mutating requests")

	rootCmd.AddCommand(
		newBalanceCmd(client),
		newCurrencyCmd(client),
		newTxCmd(client),
		newReconcileCmd(client),
		newMigrateCmd(),
	)

	return rootCmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newBalanceCmd(client *apiClient) *cobra.Command {
	cmd := &cobra.Command{Use: "balance", Short: "Balance operations"}

	cmd.AddCommand(&cobra.Command{
		Use:   "create NAME",
		Short: "Create a balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.BalanceResponse
			if err := client.do(cmd.Context(), http.MethodPost, "/api/v1/balances", dto.CreateBalanceRequest{Name: args[0]}, &resp); err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get ID",
		Short: "Show a balance with its currency balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp json.RawMessage
			if err := client.do(cmd.Context(), http.MethodGet, "/api/v1/balances/"+url.PathEscape(args[0]), nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	})

	var (
		name          string
		limit, offset int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			q.Set("offset", strconv.Itoa(offset))
			if name != "" {
				q.Set("name", name)
			}

			var resp dto.ListResponse[*dto.BalanceResponse]
			if err := client.do(cmd.Context(), http.MethodGet, "/api/v1/balances?"+q.Encode(), nil, &resp); err != nil {
				return err
			}
			for _, b := range resp.Items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", b.ID, b.Name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total: %d\n", resp.Total)
			return nil
		},
	}
	list.Flags().StringVar(&name, "name", "", "Filter by name substring")
	list.Flags().IntVar(&limit, "limit", 20, "Page size")
	list.Flags().IntVar(&offset, "offset", 0, "Page offset")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "reset ID",
		Short: "Settle every currency balance of a balance to zero",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp json.RawMessage
			if err := client.do(cmd.Context(), http.MethodPost, "/api/v1/balances/"+url.PathEscape(args[0])+"/reset", nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	})

	var currencyID string
	stats := &cobra.Command{
		Use:   "stats ID",
		Short: "Show income and expense totals of a balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/balances/" + url.PathEscape(args[0]) + "/statistics"
			if currencyID != "" {
				path += "?currency_id=" + url.QueryEscape(currencyID)
			}

			var resp dto.StatisticsResponse
			if err := client.do(cmd.Context(), http.MethodGet, path, nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
	stats.Flags().StringVar(&currencyID, "currency", "", "Restrict to one currency id")
	cmd.AddCommand(stats)

	return cmd
}

func newCurrencyCmd(client *apiClient) *cobra.Command {
	cmd := &cobra.Command{Use: "currency", Short: "Currency operations"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List currencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ListResponse[*dto.CurrencyResponse]
			if err := client.do(cmd.Context(), http.MethodGet, "/api/v1/currencies?limit=100", nil, &resp); err != nil {
				return err
			}
			for _, c := range resp.Items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", c.ID, c.Code, c.Symbol, c.Name)
			}
			return nil
		},
	})

	return cmd
}

func newTxCmd(client *apiClient) *cobra.Command {
	cmd := &cobra.Command{Use: "tx", Short: "Transaction operations"}

	movement := func(use, short, path string) *cobra.Command {
		var req dto.MovementRequest
		c := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				var resp dto.TransactionResponse
				if err := client.do(cmd.Context(), http.MethodPost, path, req, &resp); err != nil {
					return err
				}
				return printJSON(cmd, resp)
			},
		}
		c.Flags().StringVar(&req.BalanceID, "balance", "", "Balance id")
		c.Flags().StringVar(&req.CurrencyID, "currency", "", "Currency id")
		c.Flags().Int64Var(&req.Amount, "amount", 0, "Amount in minor units")
		_ = c.MarkFlagRequired("balance")
		_ = c.MarkFlagRequired("currency")
		_ = c.MarkFlagRequired("amount")
		return c
	}

	cmd.AddCommand(
		movement("income", "Record money coming in", "/api/v1/transactions/income"),
		movement("expense", "Record money going out", "/api/v1/transactions/expense"),
	)

	var transfer dto.TransferRequest
	transferCmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move money between two balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.TransferResponse
			if err := client.do(cmd.Context(), http.MethodPost, "/api/v1/transactions/transfer", transfer, &resp); err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
	transferCmd.Flags().StringVar(&transfer.FromBalanceID, "from", "", "Source balance id")
	transferCmd.Flags().StringVar(&transfer.ToBalanceID, "to", "", "Destination balance id")
	transferCmd.Flags().StringVar(&transfer.CurrencyID, "currency", "", "Currency id")
	transferCmd.Flags().Int64Var(&transfer.Amount, "amount", 0, "Amount in minor units")
	for _, f := range []string{"from", "to", "currency", "amount"} {
		_ = transferCmd.MarkFlagRequired(f)
	}
	cmd.AddCommand(transferCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a transaction and reverse its effect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.do(cmd.Context(), http.MethodDelete, "/api/v1/transactions/"+url.PathEscape(args[0]), nil, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func newReconcileCmd(client *apiClient) *cobra.Command {
	var balanceID string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Check stored amounts against transaction history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if balanceID != "" {
				var results []*dto.ReconciliationResultResponse
				if err := client.do(cmd.Context(), http.MethodGet, "/api/v1/balances/"+url.PathEscape(balanceID)+"/reconciliation", nil, &results); err != nil {
					return err
				}
				bad := printDiscrepancies(out, results)
				fmt.Fprintf(out, "pairs: %d, discrepancies: %d\n", len(results), bad)
				if bad > 0 {
					return errReconciliationFailed
				}
				return nil
			}

			var report dto.ReconciliationReportResponse
			if err := client.do(cmd.Context(), http.MethodGet, "/api/v1/ledger/reconciliation", nil, &report); err != nil {
				return err
			}
			printDiscrepancies(out, report.Discrepancies)
			fmt.Fprintf(out, "pairs: %d, reconciled: %d\n", report.TotalPairs, report.ReconciledPairs)
			if len(report.Discrepancies) > 0 {
				return errReconciliationFailed
			}
			fmt.Fprintln(out, "ledger is consistent")
			return nil
		},
	}
	cmd.Flags().StringVar(&balanceID, "balance", "", "Check a single balance")

	return cmd
}

func printDiscrepancies(w io.Writer, results []*dto.ReconciliationResultResponse) int {
	n := 0
	for _, r := range results {
		if r.IsReconciled {
			continue
		}
		n++
		fmt.Fprintf(w, "MISMATCH balance=%s currency=%s recorded=%d expected=%d diff=%d\n",
			r.BalanceID, r.CurrencyID, r.RecordedAmount, r.ExpectedAmount, r.Difference)
	}
	return n
}

// migrator is the subset of postgres.Migrator the migrate command drives.
type migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
}

var newMigrator = func(databaseURL, path string, log zerolog.Logger) migrator {
	return postgres.NewMigrator(databaseURL, path, log)
}

func newMigrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the postgres schema",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection URL")
	cmd.PersistentFlags().StringVar(&path, "path", "", "Directory of migration files (embedded migrations when empty)")

	open := func(cmd *cobra.Command) (migrator, error) {
		if databaseURL == "" {
			return nil, errors.New("--database-url or DATABASE_URL is required")
		}
		log := logger.NewWithWriter(logger.Config{Level: "info", Format: "console"}, cmd.ErrOrStderr())
		return newMigrator(databaseURL, path, log), nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open(cmd)
			if err != nil {
				return err
			}
			return m.Up()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open(cmd)
			if err != nil {
				return err
			}
			return m.Down()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open(cmd)
			if err != nil {
				return err
			}
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version: %d, dirty: %t\n", version, dirty)
			return nil
		},
	})

	return cmd
}
