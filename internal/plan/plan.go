package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/omeyang/xmcast/pkg/util/xmcast"
)

// Format 定义规划文件格式。
type Format string

const (
	// FormatYAML YAML 格式。
	FormatYAML Format = "yaml"

	// FormatJSON JSON 格式。
	FormatJSON Format = "json"
)

// MaxAddresses 是整个多播范围的地址数量（2^28），也是单个规划能申请的上限。
const MaxAddresses = 1 << 28

// Plan 是一份频道规划。
type Plan struct {
	// Base 是第一个分配出去的 URI，必须通过完整校验。
	Base string `koanf:"base"`
	// SkipReserved 为 true 时跳过 224.0.0.0/24 保留块。
	SkipReserved bool `koanf:"skip_reserved"`
	// Channels 按声明顺序分配。
	Channels []Channel `koanf:"channels"`

	sum uint64
}

// Channel 是规划中的一个频道。
type Channel struct {
	Name  string `koanf:"name"`
	Count int    `koanf:"count"`
	// Port 非零时覆盖 base 的端口。
	Port int `koanf:"port"`
	// Query 非空时覆盖 base 的查询串。
	Query string `koanf:"query"`
}

// Sum 返回规划原始内容的 xxhash 摘要，用于判断内容是否变化。
func (p *Plan) Sum() uint64 {
	return p.sum
}

// Total 返回所有频道需要的地址总数。通过 [Plan.Validate] 的规划不超过 [MaxAddresses]。
func (p *Plan) Total() int {
	n := 0
	for _, ch := range p.Channels {
		n += ch.Count
	}
	return n
}

// Validate 检查规划约束，失败时返回包装了 [ErrInvalidPlan] 的错误。
func (p *Plan) Validate() error {
	if p.Base == "" {
		return fmt.Errorf("%w: base is required", ErrInvalidPlan)
	}
	if err := xmcast.Validate(p.Base); err != nil {
		return fmt.Errorf("%w: base %q: %w", ErrInvalidPlan, p.Base, err)
	}
	if len(p.Channels) == 0 {
		return fmt.Errorf("%w: no channels", ErrInvalidPlan)
	}
	seen := make(map[string]struct{}, len(p.Channels))
	total := 0
	for i, ch := range p.Channels {
		if strings.TrimSpace(ch.Name) == "" {
			return fmt.Errorf("%w: channel %d has no name", ErrInvalidPlan, i)
		}
		if _, dup := seen[ch.Name]; dup {
			return fmt.Errorf("%w: duplicate channel %q", ErrInvalidPlan, ch.Name)
		}
		seen[ch.Name] = struct{}{}
		if ch.Count <= 0 {
			return fmt.Errorf("%w: channel %q count must be positive, got %d", ErrInvalidPlan, ch.Name, ch.Count)
		}
		if ch.Count > MaxAddresses {
			return fmt.Errorf("%w: channel %q count %d exceeds %d", ErrInvalidPlan, ch.Name, ch.Count, MaxAddresses)
		}
		// 每个 count 都不超过 MaxAddresses，累加不会溢出
		total += ch.Count
		if total > MaxAddresses {
			return fmt.Errorf("%w: total count %d exceeds %d", ErrInvalidPlan, total, MaxAddresses)
		}
		if ch.Port < 0 || ch.Port > 65535 {
			return fmt.Errorf("%w: channel %q port %d out of range", ErrInvalidPlan, ch.Name, ch.Port)
		}
	}
	return nil
}

// Load 从文件加载并校验规划，根据扩展名（.yaml/.yml 或 .json）选择格式。
func Load(path string) (*Plan, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return LoadBytes(data, format)
}

// LoadBytes 从字节数据加载并校验规划，需要显式指定格式。
func LoadBytes(data []byte, format Format) (*Plan, error) {
	k := koanf.New(".")
	if err := loadData(k, data, format); err != nil {
		return nil, err
	}

	p := &Plan{}
	if err := k.UnmarshalWithConf("", p, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.sum = xxhash.Sum64(data)
	return p, nil
}

// DetectFormat 根据文件扩展名检测规划格式。
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

// loadData 加载数据到 koanf 实例。
func loadData(k *koanf.Koanf, data []byte, format Format) error {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return nil
}
