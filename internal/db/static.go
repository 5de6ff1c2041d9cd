package db

import (
	"context"
	"fmt"

	"chatdb/pkg/models"
)

// StaticProvider 파싱된 DDL/JSON 스키마를 그대로 제공
type StaticProvider struct {
	schema *models.Schema
}

// NewStaticProvider 정적 스키마 제공자
func NewStaticProvider(schema *models.Schema) *StaticProvider {
	return &StaticProvider{schema: schema}
}

func (p *StaticProvider) Type() models.DBType {
	return p.schema.DBType
}

func (p *StaticProvider) Close() error {
	return nil
}

func (p *StaticProvider) ListTables(_ context.Context) ([]string, error) {
	names := make([]string, len(p.schema.Tables))
	for i, t := range p.schema.Tables {
		names[i] = t.Name
	}
	return names, nil
}

func (p *StaticProvider) DescribeTable(_ context.Context, name string) (*models.Table, error) {
	t, ok := p.schema.Table(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	out := *t
	return &out, nil
}
