package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"chatdb/internal/db"
	"chatdb/internal/schema"
	"chatdb/pkg/models"
)

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "대화형 모드",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()

			p, err := a.provider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			d, err := a.dialect(p)
			if err != nil {
				return err
			}
			s := &session{
				app:      a,
				provider: p,
				dialect:  d,
				table:    a.opts.table,
				out:      cmd.OutOrStdout(),
			}
			if s.table == "" {
				names, err := p.ListTables(ctx)
				if err != nil {
					return err
				}
				if len(names) > 0 {
					s.table = names[0]
				}
			}
			return s.run(ctx, cmd.InOrStdin())
		},
	}
}

// session 대화형 모드 상태
type session struct {
	app      *app
	provider db.Provider
	dialect  models.Dialect
	table    string
	out      io.Writer
}

func (s *session) run(ctx context.Context, in io.Reader) error {
	reader := bufio.NewReader(in)

	fmt.Fprint(s.out, banner)
	fmt.Fprintln(s.out, "🎯 대화형 모드 시작 (종료: exit 또는 quit)")
	fmt.Fprintln(s.out, "💡 명령어:")
	fmt.Fprintln(s.out, "   /table <이름>     - 대상 테이블 변경")
	fmt.Fprintln(s.out, "   /dialect <방언>   - sql 또는 mongodb")
	fmt.Fprintln(s.out, "   /tables          - 테이블 목록")
	fmt.Fprintln(s.out, "   /schema          - 현재 테이블 정보")
	fmt.Fprintln(s.out, "   /samples [구문]  - 샘플 쿼리 생성")
	fmt.Fprintln(s.out, "   /joins           - 조인 후보")
	fmt.Fprintln(s.out, "   /constructs      - 지원 구문 목록")
	fmt.Fprintln(s.out)

	for {
		fmt.Fprintf(s.out, "[%s|%s] > ", s.table, s.dialect)
		input, err := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if err != nil {
				fmt.Fprintln(s.out)
				return nil
			}
			continue
		}

		if input == "exit" || input == "quit" {
			fmt.Fprintln(s.out, "👋 종료합니다!")
			return nil
		}

		if strings.HasPrefix(input, "/") {
			s.handleCommand(ctx, input)
		} else {
			s.handleText(ctx, input)
		}
		if err != nil {
			return nil
		}
	}
}

func (s *session) handleText(ctx context.Context, text string) {
	t, err := s.currentTable(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "❌ 오류: %v\n\n", err)
		return
	}
	r, err := s.app.gen.MatchAndGenerate(text, t, s.dialect)
	if err != nil {
		fmt.Fprintf(s.out, "❌ 오류: %v\n\n", err)
		return
	}

	fmt.Fprintln(s.out, strings.Repeat("─", 60))
	_ = renderMatch(s.out, r, "table")
	fmt.Fprintln(s.out, strings.Repeat("─", 60))
	fmt.Fprintln(s.out)
}

func (s *session) handleCommand(ctx context.Context, input string) {
	parts := strings.SplitN(input, " ", 2)
	command := strings.ToLower(parts[0])
	arg := ""
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}

	switch command {
	case "/table":
		if arg == "" {
			fmt.Fprintln(s.out, "❌ 테이블 이름을 입력하세요")
			return
		}
		if _, err := s.provider.DescribeTable(ctx, arg); err != nil {
			fmt.Fprintf(s.out, "❌ 오류: %v\n", err)
			return
		}
		s.table = arg
		fmt.Fprintf(s.out, "✅ 테이블 %s 로 전환\n", arg)

	case "/dialect":
		d, ok := models.ParseDialect(arg)
		if !ok {
			fmt.Fprintf(s.out, "❌ 지원하지 않는 방언: %s\n", arg)
			return
		}
		s.dialect = d
		fmt.Fprintf(s.out, "✅ %s 모드로 전환\n", d)

	case "/tables":
		summaries, err := describeAll(ctx, s.provider)
		if err != nil {
			fmt.Fprintf(s.out, "❌ 오류: %v\n", err)
			return
		}
		_ = renderTables(s.out, summaries, "table")

	case "/schema":
		t, err := s.currentTable(ctx)
		if err != nil {
			fmt.Fprintf(s.out, "❌ 오류: %v\n", err)
			return
		}
		renderSchema(s.out, tableSummary{Table: t, Classification: schema.Classify(t)})

	case "/samples":
		s.samples(ctx, arg)

	case "/joins":
		t, err := s.currentTable(ctx)
		if err != nil {
			fmt.Fprintf(s.out, "❌ 오류: %v\n", err)
			return
		}
		rel, err := s.app.related(ctx, s.provider, t.Name)
		if err != nil {
			fmt.Fprintf(s.out, "❌ 오류: %v\n", err)
			return
		}
		_ = renderJoins(s.out, s.app.gen.JoinCandidates(t, rel...), "table")

	case "/constructs":
		for _, n := range s.app.gen.Catalog().Names() {
			fmt.Fprintln(s.out, "  • "+n)
		}

	default:
		fmt.Fprintf(s.out, "❌ 알 수 없는 명령: %s\n", command)
	}
	fmt.Fprintln(s.out)
}

func (s *session) samples(ctx context.Context, arg string) {
	t, err := s.currentTable(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "❌ 오류: %v\n", err)
		return
	}
	var constructs []string
	if arg != "" {
		constructs = []string{arg}
	}
	rel := s.app.samplesRelated(ctx, s.provider, t.Name, constructs)

	samples, err := s.app.gen.GenerateSamples(models.SampleRequest{
		Table:      t,
		Related:    rel,
		Dialect:    s.dialect,
		Constructs: constructs,
	})
	if err != nil {
		fmt.Fprintf(s.out, "❌ 오류: %v\n", err)
		return
	}
	_ = renderSamples(s.out, samples, "table")
}

func (s *session) currentTable(ctx context.Context) (models.Table, error) {
	if s.table == "" {
		return models.Table{}, fmt.Errorf("테이블이 없습니다. /table 로 지정하세요")
	}
	t, err := s.provider.DescribeTable(ctx, s.table)
	if err != nil {
		return models.Table{}, err
	}
	return *t, nil
}
