package proxies

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"insyn-search/models"

	"gopkg.in/yaml.v3"
)

// Provider defines the interface for proxy configuration sources
type Provider interface {
	Proxies() (models.ProxyConfig, error)
}

// FileProvider reads proxy settings from a file holding a JSON object such as
//
//	{"http": "http://10.0.0.1:3128", "https": "http://10.0.0.1:3128"}
//
// Both keys are optional. The file is parsed as YAML, which accepts JSON as-is.
type FileProvider struct {
	Path string
	// Required makes a missing file an error instead of "no proxy".
	Required bool
}

func NewFileProvider(path string, required bool) *FileProvider {
	return &FileProvider{Path: path, Required: required}
}

type proxyFile struct {
	HTTP  string `yaml:"http"`
	HTTPS string `yaml:"https"`
}

func (p *FileProvider) Proxies() (models.ProxyConfig, error) {
	data, err := os.ReadFile(p.Path)
	if errors.Is(err, fs.ErrNotExist) && !p.Required {
		return models.ProxyConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read proxy file: %w", err)
	}

	var f proxyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse proxy file %s: %w", p.Path, err)
	}
	return build(f.HTTP, f.HTTPS), nil
}

// EnvProvider takes proxies from HTTP_PROXY and HTTPS_PROXY (either case)
type EnvProvider struct{}

func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

func (p *EnvProvider) Proxies() (models.ProxyConfig, error) {
	return build(lookupEnv("HTTP_PROXY"), lookupEnv("HTTPS_PROXY")), nil
}

func lookupEnv(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return os.Getenv(strings.ToLower(key))
}

// StaticProvider for testing with hardcoded proxies
type StaticProvider struct {
	config models.ProxyConfig
}

func NewStaticProvider(config models.ProxyConfig) *StaticProvider {
	return &StaticProvider{config: config}
}

func (p *StaticProvider) Proxies() (models.ProxyConfig, error) {
	out := make(models.ProxyConfig, len(p.config))
	for k, v := range p.config {
		out[k] = v
	}
	return out, nil
}

func build(httpProxy, httpsProxy string) models.ProxyConfig {
	cfg := models.ProxyConfig{}
	if s := strings.TrimSpace(httpProxy); s != "" {
		cfg["http"] = s
	}
	if s := strings.TrimSpace(httpsProxy); s != "" {
		cfg["https"] = s
	}
	return cfg
}
