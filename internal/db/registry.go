package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"chatdb/pkg/models"
)

// ErrSourceNotFound 등록되지 않은 소스 이름
var ErrSourceNotFound = errors.New("소스를 찾을 수 없음")

const (
	// describeConcurrency 관련 테이블 동시 조회 수
	describeConcurrency = 4
	// connectConcurrency 시작 시 동시에 여는 소스 수
	connectConcurrency = 4
)

// Registry 이름 → 스키마 제공자
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry 빈 레지스트리
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register 같은 이름이 있으면 이전 제공자를 닫고 교체
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	old := r.providers[name]
	r.providers[name] = p
	r.mu.Unlock()

	if old != nil && old != p {
		_ = old.Close()
	}
}

// Connect 설정된 소스를 동시에 열어 캐시를 씌워 등록
// 하나라도 실패하면 이미 연 연결을 닫고 아무것도 등록하지 않는다.
func (r *Registry) Connect(ctx context.Context, sources []models.SourceConfig, ttl time.Duration) error {
	opened := make([]Provider, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(connectConcurrency)
	for i, src := range sources {
		g.Go(func() error {
			p, err := Open(ctx, src)
			if err != nil {
				return fmt.Errorf("소스 %s: %w", src.Name, err)
			}
			opened[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, p := range opened {
			if p != nil {
				_ = p.Close()
			}
		}
		return err
	}

	for i, src := range sources {
		r.Register(src.Name, NewCachedProvider(opened[i], ttl))
	}
	return nil
}

// Get 이름으로 조회
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, name)
	}
	return p, nil
}

// Names 등록된 소스 이름 (정렬)
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close 모든 제공자 종료
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, p := range r.providers {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	r.providers = make(map[string]Provider)
	return errors.Join(errs...)
}

// DescribeTables 여러 테이블을 동시에 조회 (결과는 입력 순서)
func DescribeTables(ctx context.Context, p Provider, names []string) ([]models.Table, error) {
	tables := make([]models.Table, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(describeConcurrency)
	for i, name := range names {
		g.Go(func() error {
			t, err := p.DescribeTable(ctx, name)
			if err != nil {
				return fmt.Errorf("테이블 %s 조회 실패: %w", name, err)
			}
			tables[i] = *t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// DescribeEach DescribeTables 와 같지만 조회에 실패한 테이블은 결과에서 빼고 오류로 따로 돌려준다
func DescribeEach(ctx context.Context, p Provider, names []string) ([]models.Table, map[string]error) {
	tables := make([]*models.Table, len(names))
	errs := make([]error, len(names))

	var g errgroup.Group
	g.SetLimit(describeConcurrency)
	for i, name := range names {
		g.Go(func() error {
			tables[i], errs[i] = p.DescribeTable(ctx, name)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.Table, 0, len(names))
	var failed map[string]error
	for i, name := range names {
		if errs[i] != nil {
			if failed == nil {
				failed = make(map[string]error)
			}
			failed[name] = errs[i]
			continue
		}
		out = append(out, *tables[i])
	}
	return out, failed
}
