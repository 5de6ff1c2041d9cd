// Package config 기본값, YAML 파일, 환경 변수, 플래그 순으로 설정을 합친다
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"chatdb/pkg/models"
)

const (
	// DefaultFile 작업 디렉터리에서 찾는 설정 파일
	DefaultFile = "chatdb.yaml"
	envPrefix   = "CHATDB_"
)

// Config 전체 설정
type Config struct {
	Server         ServerConfig          `koanf:"server"`
	Log            LogConfig             `koanf:"log"`
	Sources        []models.SourceConfig `koanf:"sources" validate:"dive"`
	DefaultSource  string                `koanf:"default_source"`
	SchemaCacheTTL time.Duration         `koanf:"schema_cache_ttl" validate:"gte=0"`
	Seed           uint64                `koanf:"seed"` // 0 이면 매번 다른 샘플
}

// ServerConfig HTTP 서버 설정
type ServerConfig struct {
	Addr           string        `koanf:"addr" validate:"required"`
	ReadTimeout    time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout   time.Duration `koanf:"write_timeout" validate:"gt=0"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gt=0"`
	RateLimit      float64       `koanf:"rate_limit" validate:"gte=0"` // 초당 요청 수, 0 이면 제한 없음
	RateBurst      int           `koanf:"rate_burst" validate:"gte=0"`
	CORSOrigins    []string      `koanf:"cors_origins"`
}

// LogConfig 로그 설정
type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `koanf:"json"`
}

func defaults() map[string]any {
	return map[string]any{
		"server.addr":            ":8080",
		"server.read_timeout":    "15s",
		"server.write_timeout":   "60s",
		"server.request_timeout": "30s",
		"server.rate_limit":      20.0,
		"server.rate_burst":      40,
		"server.cors_origins":    []string{"*"},
		"log.level":              "info",
		"log.json":               false,
		"schema_cache_ttl":       "5m",
		"seed":                   0,
	}
}

// flagKeys 플래그 이름 → 설정 키
var flagKeys = map[string]string{
	"addr":        "server.addr",
	"rate-limit":  "server.rate_limit",
	"log-level":   "log.level",
	"log-json":    "log.json",
	"source":      "default_source",
	"cache-ttl":   "schema_cache_ttl",
	"seed":        "seed",
	"cors-origin": "server.cors_origins",
}

// Load 설정 적재
// 우선순위: 플래그 > 환경 변수 > 설정 파일 > 기본값
// path 가 비어 있으면 작업 디렉터리의 chatdb.yaml 을 (있으면) 읽는다.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("기본값 적재 실패: %w", err)
	}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("설정 파일 %s 읽기 실패: %w", path, err)
		}
	}

	// CHATDB_SERVER__ADDR → server.addr
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("환경 변수 적재 실패: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("플래그 적재 실패: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("설정 해석 실패: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate 구조체 태그 검사와 소스 이름 검사
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("설정 검증 실패: %w", err)
	}

	seen := make(map[string]bool, len(c.Sources))
	for _, src := range c.Sources {
		if seen[src.Name] {
			return fmt.Errorf("설정 검증 실패: 소스 이름 중복: %s", src.Name)
		}
		seen[src.Name] = true
	}
	if c.DefaultSource != "" && !seen[c.DefaultSource] {
		return fmt.Errorf("설정 검증 실패: default_source %q 가 sources 에 없음", c.DefaultSource)
	}
	return nil
}

// Source 이름으로 소스 설정 조회
func (c *Config) Source(name string) (models.SourceConfig, error) {
	for _, src := range c.Sources {
		if src.Name == name {
			return src, nil
		}
	}
	return models.SourceConfig{}, fmt.Errorf("설정에 없는 소스: %s", name)
}

// BindFlags Load 가 읽는 플래그 등록
func BindFlags(fs *pflag.FlagSet) {
	fs.String("addr", ":8080", "HTTP 서버 주소")
	fs.Float64("rate-limit", 20, "초당 요청 수 제한 (0 이면 제한 없음)")
	fs.String("log-level", "info", "로그 레벨 (debug, info, warn, error)")
	fs.Bool("log-json", false, "JSON 로그 출력")
	fs.String("source", "", "기본 스키마 소스 이름")
	fs.Duration("cache-ttl", 5*time.Minute, "스키마 캐시 유지 시간")
	fs.Uint64("seed", 0, "샘플 생성 난수 시드 (0 이면 매번 다름)")
	fs.StringSlice("cors-origin", []string{"*"}, "허용할 CORS Origin")
}
