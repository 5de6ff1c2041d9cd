package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chatdb/internal/db"
	"chatdb/internal/schema"
	"chatdb/pkg/models"
)

func newMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match TEXT...",
		Short: "자연어 문장을 쿼리로 변환",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()

			p, err := a.provider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			t, err := a.table(ctx, p)
			if err != nil {
				return err
			}
			d, err := a.dialect(p)
			if err != nil {
				return err
			}

			r, err := a.gen.MatchAndGenerate(strings.Join(args, " "), t, d)
			if err != nil {
				return err
			}
			return renderMatch(cmd.OutOrStdout(), r, a.opts.format)
		},
	}
}

func newSamplesCmd() *cobra.Command {
	var constructs []string

	cmd := &cobra.Command{
		Use:   "samples",
		Short: "테이블에 대한 샘플 쿼리 생성",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()

			p, err := a.provider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			t, err := a.table(ctx, p)
			if err != nil {
				return err
			}
			d, err := a.dialect(p)
			if err != nil {
				return err
			}
			rel := a.samplesRelated(ctx, p, t.Name, constructs)

			samples, err := a.gen.GenerateSamples(models.SampleRequest{
				Table:      t,
				Related:    rel,
				Dialect:    d,
				Constructs: constructs,
			})
			if err != nil {
				return err
			}
			return renderSamples(cmd.OutOrStdout(), samples, a.opts.format)
		},
	}
	cmd.Flags().StringSliceVar(&constructs, "constructs", nil, "생성할 구문 (기본: 전체)")
	return cmd
}

func newJoinsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "joins",
		Short: "테이블의 조인 후보 출력",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()

			p, err := a.provider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			t, err := a.table(ctx, p)
			if err != nil {
				return err
			}
			rel, err := a.related(ctx, p, t.Name)
			if err != nil {
				return err
			}
			return renderJoins(cmd.OutOrStdout(), a.gen.JoinCandidates(t, rel...), a.opts.format)
		},
	}
}

func newConstructsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "constructs",
		Short: "지원하는 쿼리 구문 목록",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			names := a.gen.Catalog().Names()
			if a.opts.format == "json" {
				return renderJSON(cmd.OutOrStdout(), names)
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), "  • "+n)
			}
			return nil
		},
	}
}

func newTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "스키마의 테이블과 컬럼 분류 출력",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()

			p, err := a.provider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			summaries, err := describeAll(ctx, p)
			if err != nil {
				return err
			}
			return renderTables(cmd.OutOrStdout(), summaries, a.opts.format)
		},
	}
}

// describeAll 모든 테이블 조회와 컬럼 분류
func describeAll(ctx context.Context, p db.Provider) ([]tableSummary, error) {
	names, err := p.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	tables, err := db.DescribeTables(ctx, p, names)
	if err != nil {
		return nil, err
	}
	out := make([]tableSummary, len(tables))
	for i, t := range tables {
		out[i] = tableSummary{Table: t, Classification: schema.Classify(t)}
	}
	return out, nil
}
