package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bondscreen/internal/analytics"
	"bondscreen/internal/validation"
	api "bondscreen/pkg/contracts/api/v1"
)

func loadCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load a listing and report its size and data-quality warnings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			resp := api.NewDatasetResponse(s.dataset, false)
			out := cmd.OutOrStdout()
			if opts.json {
				return writeJSON(out, resp)
			}

			fmt.Fprintf(out, "Dataset %s (%s)\n", resp.ID, resp.Source)
			fmt.Fprintf(out, "Rows: %d\n", resp.Rows)
			fmt.Fprintf(out, "Warnings: %d\n", resp.WarningCount)
			codes := make([]string, 0, len(resp.WarningCodes))
			for code := range resp.WarningCodes {
				codes = append(codes, code)
			}
			sort.Strings(codes)
			for _, code := range codes {
				fmt.Fprintf(out, "  %s: %d\n", code, resp.WarningCodes[code])
			}
			return nil
		},
	}
}

func optionsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the selectable values of every screening control",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			o, err := s.svc.Options(cmd.Context(), s.dataset.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.json {
				return writeJSON(out, o)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "bond types\t%s\n", strings.Join(o.BondTypes, ", "))
			fmt.Fprintf(tw, "credit ratings\t%s\n", strings.Join(o.CreditRatings, ", "))
			fmt.Fprintf(tw, "security types\t%s\n", strings.Join(o.SecurityTypes, ", "))
			fmt.Fprintf(tw, "payment frequencies\t%s\n", strings.Join(o.PaymentFrequencies, ", "))
			fmt.Fprintf(tw, "industries\t%s\n", strings.Join(o.Industries, ", "))
			fmt.Fprintf(tw, "risk levels\t%s\n", strings.Join(o.RiskLevels, ", "))
			return tw.Flush()
		},
	}
}

func filterCmd(opts *globalOptions) *cobra.Command {
	var countOnly bool

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Print the bonds matching the screening criteria",
		Args:  cobra.NoArgs,
	}
	crit := addCriteriaFlags(cmd)
	cmd.Flags().BoolVar(&countOnly, "count", false, "print only the match count")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), cmd, opts)
		if err != nil {
			return err
		}
		defer s.Close()

		include := !countOnly
		resp, err := s.svc.Filter(cmd.Context(), s.dataset.ID, api.FilterRequest{
			Criteria:       crit.build(cmd.Flags(), s.dataset),
			IncludeRecords: &include,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if opts.json {
			return writeJSON(out, resp)
		}

		fmt.Fprintf(out, "%d of %d bonds match\n", resp.Matched, resp.Total)
		if resp.Warning != nil {
			fmt.Fprintln(out, resp.Warning.Message)
			return nil
		}
		if countOnly {
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ISIN\tISSUER\tCOUPON\tYIELD\tMATURITY\tYEARS\tRATING\tRISK")
		for _, r := range resp.Records {
			d := analytics.Detail(r)
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				d.ISIN, d.IssuerName, d.Coupon, d.OfferYield, d.Maturity, d.YearsToMaturity, d.CreditRating, d.RiskLevel)
		}
		return tw.Flush()
	}

	return cmd
}

func summaryCmd(opts *globalOptions) *cobra.Command {
	var groupBy []string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Aggregate the bonds matching the screening criteria",
		Args:  cobra.NoArgs,
	}
	crit := addCriteriaFlags(cmd)
	cmd.Flags().StringSliceVar(&groupBy, "group-by", nil, "dimension to group by (repeatable)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), cmd, opts)
		if err != nil {
			return err
		}
		defer s.Close()

		resp, err := s.svc.Summarize(cmd.Context(), s.dataset.ID, api.SummaryRequest{
			Criteria: crit.build(cmd.Flags(), s.dataset),
			GroupBy:  groupBy,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if opts.json {
			return writeJSON(out, resp)
		}

		sum := resp.Summary
		fmt.Fprintf(out, "%d of %d bonds match\n", sum.Count, resp.Total)
		if !sum.HasData {
			fmt.Fprintln(out, sum.Message)
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "mean coupon\t%s\n", analytics.FormatPercent(sum.MeanCoupon))
		fmt.Fprintf(tw, "mean offer yield\t%s\n", analytics.FormatPercent(sum.MeanOfferYield))
		fmt.Fprintf(tw, "mean real yield\t%s\n", analytics.FormatPercent(sum.MeanRealYield))
		fmt.Fprintf(tw, "total face value\t%s\n", sum.TotalFaceValueText)
		fmt.Fprintf(tw, "typical payment frequency\t%s\n", sum.ModePaymentFrequency)
		if err := tw.Flush(); err != nil {
			return err
		}

		for _, dim := range groupBy {
			dim = strings.ToLower(strings.TrimSpace(dim))
			fmt.Fprintf(out, "\nby %s\n", dim)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, g := range resp.Groups[dim] {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", g.Key, g.Count, analytics.FormatPercent(g.MeanCoupon))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
		}
		return nil
	}

	return cmd
}

func exportCmd(opts *globalOptions) *cobra.Command {
	var (
		outPath string
		columns []string
		bom     bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the bonds matching the screening criteria as CSV",
		Args:  cobra.NoArgs,
	}
	crit := addCriteriaFlags(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file or directory; empty writes to stdout")
	cmd.Flags().StringSliceVar(&columns, "column", nil, "column to export (repeatable); default every column")
	cmd.Flags().BoolVar(&bom, "bom", false, "prefix the file with a UTF-8 byte order mark")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), cmd, opts)
		if err != nil {
			return err
		}
		defer s.Close()

		req := api.ExportRequest{
			Criteria: crit.build(cmd.Flags(), s.dataset),
			Columns:  columns,
		}
		if cmd.Flags().Changed("bom") {
			req.BOM = &bom
		}

		if outPath == "" {
			_, err := s.svc.Export(cmd.Context(), s.dataset.ID, req, cmd.OutOrStdout())
			return err
		}

		return exportToFile(cmd, s, req, outPath)
	}

	return cmd
}

// exportToFile writes the export to path. A directory receives the
// generated file name.
func exportToFile(cmd *cobra.Command, s *session, req api.ExportRequest, path string) (err error) {
	dir, isDir := filepath.Dir(filepath.Clean(path)), false
	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		dir, isDir = path, true
	}

	if !isDir {
		if err := validation.NewFileValidator(s.logger, 0).ValidateOutputDirectory(dir); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(dir, ".bondctl-export-*")
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	result, err := s.svc.Export(cmd.Context(), s.dataset.ID, req, tmp)
	if err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}

	target := path
	if isDir {
		target = filepath.Join(path, result.FileName)
	}
	if err = os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", result.Rows, target)
	return nil
}
