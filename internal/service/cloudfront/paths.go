package cloudfront

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// CloudFrontの1リクエストあたりの上限
const (
	MaxPathsPerRequest     = 3000
	MaxWildcardsPerRequest = 15
)

// DefaultPaths はパス未指定時に無効化するパス
var DefaultPaths = []string{"/*"}

// パスセットの種類
const (
	PathSetDeployment = "deployment"
	PathSetContent    = "content"
	PathSetCustom     = "custom"
	PathSetChanged    = "changed"
)

// PathPresets はパスセット名から無効化パスへの対応表
type PathPresets struct {
	Deployment []string            `yaml:"deployment"`
	Content    map[string][]string `yaml:"content"`
}

// DefaultPathPresets は組み込みのパスセットを返します
func DefaultPathPresets() PathPresets {
	return PathPresets{
		Deployment: []string{"/*"},
		Content: map[string][]string{
			"pages":    {"/", "/index.html", "/about*", "/contact*"},
			"blog":     {"/blog", "/blog/*"},
			"services": {"/services", "/services/*"},
			"images":   {"/images/*"},
			"assets":   {"/_next/static/*"},
			"seo":      {"/sitemap.xml", "/robots.txt"},
		},
	}
}

// LoadPathPresets はYAMLファイルを読み込み組み込みのパスセットに上書きします
func LoadPathPresets(path string) (PathPresets, error) {
	presets := DefaultPathPresets()
	if path == "" {
		return presets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return presets, fmt.Errorf("パスセットファイルの読み込みに失敗: %w", err)
	}

	var override PathPresets
	if err := yaml.Unmarshal(data, &override); err != nil {
		return presets, fmt.Errorf("パスセットファイルの解析に失敗 (%s): %w", path, err)
	}

	if len(override.Deployment) > 0 {
		presets.Deployment = override.Deployment
	}
	for name, paths := range override.Content {
		presets.Content[name] = paths
	}
	return presets, nil
}

// ContentTypes はコンテンツ種別名をソートして返します
func (p PathPresets) ContentTypes() []string {
	names := make([]string, 0, len(p.Content))
	for name := range p.Content {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolvePathSet はパスセット指定（deployment / content <type> / custom <path...>）を無効化パスに変換します
// changed は呼び出し側がS3から求めたパスをargsで渡す
func ResolvePathSet(presets PathPresets, kind string, args []string) ([]string, error) {
	switch kind {
	case PathSetDeployment:
		if len(args) > 0 {
			return nil, fmt.Errorf("deployment は引数を取りません: %v", args)
		}
		return NormalizePaths(presets.Deployment)
	case PathSetContent:
		if len(args) != 1 {
			return nil, fmt.Errorf("content にはコンテンツ種別を1つ指定してください (%s)", strings.Join(presets.ContentTypes(), ", "))
		}
		paths, ok := presets.Content[args[0]]
		if !ok {
			return nil, fmt.Errorf("不明なコンテンツ種別です: %s (%s)", args[0], strings.Join(presets.ContentTypes(), ", "))
		}
		return NormalizePaths(paths)
	case PathSetCustom, PathSetChanged:
		if len(args) == 0 {
			return nil, fmt.Errorf("%s には1つ以上のパスが必要です", kind)
		}
		return NormalizePaths(args)
	default:
		return nil, fmt.Errorf("不明なパスセットです: %s (deployment, content, custom, changed)", kind)
	}
}

// NormalizePaths はパスを検証・正規化します
// 空の場合は DefaultPaths、重複は先勝ちで除去、先頭に / を補う
func NormalizePaths(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return append([]string(nil), DefaultPaths...), nil
	}

	seen := make(map[string]struct{}, len(paths))
	result := make([]string, 0, len(paths))
	wildcards := 0

	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		if err := validatePath(p); err != nil {
			return nil, err
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		if strings.HasSuffix(p, "*") {
			wildcards++
		}
		result = append(result, p)
	}

	if len(result) == 0 {
		return append([]string(nil), DefaultPaths...), nil
	}
	if len(result) > MaxPathsPerRequest {
		return nil, fmt.Errorf("%w: %d件 (上限 %d件)", ErrTooManyPaths, len(result), MaxPathsPerRequest)
	}
	if wildcards > MaxWildcardsPerRequest {
		return nil, fmt.Errorf("%w: ワイルドカード %d件 (上限 %d件)", ErrTooManyPaths, wildcards, MaxWildcardsPerRequest)
	}
	return result, nil
}

// validatePath はCloudFrontが受け付けるパス形式かを確認します（* は末尾のみ）
func validatePath(p string) error {
	if i := strings.Index(p, "*"); i >= 0 && i != len(p)-1 {
		return fmt.Errorf("%w: %s (* は末尾にのみ指定できます)", ErrInvalidPath, p)
	}
	if strings.ContainsAny(p, " \t\n") {
		return fmt.Errorf("%w: %s (空白を含めることはできません)", ErrInvalidPath, p)
	}
	if _, err := compilePattern(p); err != nil {
		return fmt.Errorf("%w: %s (%v)", ErrInvalidPath, p, err)
	}
	return nil
}

// compilePattern はCloudFrontのパスパターンをglobに変換します（* のみワイルドカード、/ をまたぐ）
func compilePattern(pattern string) (glob.Glob, error) {
	parts := strings.Split(pattern, "*")
	for i, part := range parts {
		parts[i] = glob.QuoteMeta(part)
	}
	return glob.Compile(strings.Join(parts, "*"))
}

// Covers はURLパスがいずれかの無効化パターンに一致するかを判定します
func Covers(patterns []string, urlPath string) bool {
	if !strings.HasPrefix(urlPath, "/") {
		urlPath = "/" + urlPath
	}
	for _, pattern := range patterns {
		g, err := compilePattern(pattern)
		if err != nil {
			continue
		}
		if g.Match(urlPath) {
			return true
		}
	}
	return false
}

// CollapsePaths はパス数がlimitを超える場合に /* へまとめます
func CollapsePaths(paths []string, limit int) []string {
	if limit > 0 && len(paths) > limit {
		return append([]string(nil), DefaultPaths...)
	}
	return paths
}
