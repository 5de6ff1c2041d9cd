package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"chatdb/internal/config"
	"chatdb/internal/db"
	"chatdb/internal/observe"
	"chatdb/internal/query"
	"chatdb/internal/schema"
	"chatdb/pkg/models"
)

// options 모든 명령이 공유하는 플래그
type options struct {
	configFile string
	source     string
	schemaFile string
	ddl        string
	dbType     string
	table      string
	columns    []string
	dialect    string
	format     string
	seed       uint64
	logLevel   string
}

// app 명령 실행에 필요한 상태
type app struct {
	opts   *options
	cfg    *config.Config
	gen    *query.Generator
	logger *slog.Logger
}

type appKey struct{}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "chatdb",
		Short:         "ChatDB - 자연어를 SQL / MongoDB 쿼리로 변환",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `  # 컬럼 목록만으로 변환
  chatdb match "total revenue by region" --table sales --columns region,revenue

  # DDL 파일의 스키마로 샘플 쿼리 생성
  chatdb samples --schema shop.sql --table orders --dialect mongodb

  # 설정 파일의 소스 사용
  chatdb tables --source shop`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			cfg, err := config.Load(opts.configFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			logger := observe.NewLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.JSON)
			a := &app{
				opts:   opts,
				cfg:    cfg,
				gen:    query.NewGenerator(nil, query.WithLogger(logger), query.WithSeed(cfg.Seed)),
				logger: logger,
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configFile, "config", "c", "", "설정 파일 경로 (기본: ./chatdb.yaml)")
	pf.StringVar(&opts.source, "source", "", "설정 파일의 스키마 소스 이름")
	pf.StringVar(&opts.schemaFile, "schema", "", "스키마 파일 경로 (JSON 또는 DDL)")
	pf.StringVar(&opts.ddl, "ddl", "", "DDL 문자열")
	pf.StringVar(&opts.dbType, "db", string(models.MySQL), "DDL 의 데이터베이스 타입")
	pf.StringVarP(&opts.table, "table", "t", "", "대상 테이블(컬렉션)")
	pf.StringSliceVar(&opts.columns, "columns", nil, "컬럼 목록 (스키마 대신 직접 지정)")
	pf.StringVarP(&opts.dialect, "dialect", "d", "", "출력 방언 (sql, mongodb)")
	pf.StringVarP(&opts.format, "format", "f", "table", "출력 형식: table, json")
	pf.Uint64Var(&opts.seed, "seed", 0, "샘플 생성 난수 시드 (0 이면 매번 다름)")
	pf.StringVar(&opts.logLevel, "log-level", "info", "로그 레벨 (debug, info, warn, error)")

	root.AddCommand(
		newMatchCmd(),
		newSamplesCmd(),
		newJoinsCmd(),
		newConstructsCmd(),
		newTablesCmd(),
		newReplCmd(),
	)
	return root
}

func appFrom(cmd *cobra.Command) *app {
	return cmd.Context().Value(appKey{}).(*app)
}

// provider 플래그에 맞는 스키마 제공자
// 우선순위: --columns > --schema > --ddl > --source (또는 설정의 default_source)
func (a *app) provider(ctx context.Context) (db.Provider, error) {
	o := a.opts
	parser := schema.NewParser()
	dbType := models.DBType(strings.ToLower(o.dbType))

	switch {
	case len(o.columns) > 0:
		if o.table == "" {
			return nil, fmt.Errorf("--columns 는 --table 과 함께 써야 합니다")
		}
		return db.NewStaticProvider(&models.Schema{
			DBType: dbType,
			Tables: []models.Table{models.TableFromNames(o.table, o.columns)},
		}), nil

	case o.schemaFile != "":
		data, err := os.ReadFile(o.schemaFile)
		if err != nil {
			return nil, fmt.Errorf("스키마 파일 읽기 실패: %w", err)
		}
		s, err := parser.Parse(data, dbType)
		if err != nil {
			return nil, err
		}
		return db.NewStaticProvider(withType(s, dbType)), nil

	case o.ddl != "":
		s, err := parser.ParseDDL(o.ddl, dbType)
		if err != nil {
			return nil, err
		}
		return db.NewStaticProvider(s), nil
	}

	name := o.source
	if name == "" {
		name = a.cfg.DefaultSource
	}
	if name == "" {
		return nil, fmt.Errorf("스키마가 필요합니다: --columns, --schema, --ddl, --source 중 하나를 지정하세요")
	}
	src, err := a.cfg.Source(name)
	if err != nil {
		return nil, err
	}
	return db.Open(ctx, src)
}

func withType(s *models.Schema, t models.DBType) *models.Schema {
	if s.DBType == "" {
		s.DBType = t
	}
	return s
}

// dialect --dialect 가 없으면 스키마 소스 종류의 기본 방언
func (a *app) dialect(p db.Provider) (models.Dialect, error) {
	if a.opts.dialect == "" {
		return models.DialectFor(p.Type()), nil
	}
	d, ok := models.ParseDialect(a.opts.dialect)
	if !ok {
		return "", fmt.Errorf("지원하지 않는 방언: %s", a.opts.dialect)
	}
	return d, nil
}

// table --table 의 정보 조회
func (a *app) table(ctx context.Context, p db.Provider) (models.Table, error) {
	if a.opts.table == "" {
		return models.Table{}, fmt.Errorf("--table 을 지정하세요")
	}
	t, err := p.DescribeTable(ctx, a.opts.table)
	if err != nil {
		return models.Table{}, err
	}
	return *t, nil
}

// related 기준 테이블을 뺀 나머지 테이블
// 조회하지 못한 테이블은 경고만 남기고 뺀다.
func (a *app) related(ctx context.Context, p db.Provider, base string) ([]models.Table, error) {
	names, err := p.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	others := make([]string, 0, len(names))
	for _, n := range names {
		if !strings.EqualFold(n, base) {
			others = append(others, n)
		}
	}
	tables, failed := db.DescribeEach(ctx, p, others)
	for name, err := range failed {
		a.logger.Warn("관련 테이블 조회 실패", slog.String("table", name), slog.Any("error", err))
	}
	return tables, nil
}

// samplesRelated 조인 구문을 만들 때만 관련 테이블을 조회한다
func (a *app) samplesRelated(ctx context.Context, p db.Provider, base string, constructs []string) []models.Table {
	if !a.gen.NeedsRelated(constructs) {
		return nil
	}
	tables, err := a.related(ctx, p, base)
	if err != nil {
		a.logger.Warn("관련 테이블 목록 조회 실패", slog.Any("error", err))
		return nil
	}
	return tables
}
