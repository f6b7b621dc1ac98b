package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

func Load(filename string) (Config, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, err
	}
	return Unmarshal(content)
}

func Unmarshal(content []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type Config struct {
	Lifecycle WebHook `yaml:"lifecycle,omitempty"`
}

type WebHook struct {
	Before  []*url.URL
	After   []*url.URL
	Timeout time.Duration
}

func (wh *WebHook) UnmarshalYAML(node *yaml.Node) error {
	raw := struct {
		Before  []string `yaml:"before"`
		After   []string `yaml:"after"`
		Timeout string   `yaml:"timeout"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	before, err := parseURLs(raw.Before)
	if err != nil {
		return fmt.Errorf("before: %w", err)
	}
	after, err := parseURLs(raw.After)
	if err != nil {
		return fmt.Errorf("after: %w", err)
	}
	wh.Before = before
	wh.After = after

	wh.Timeout = 0
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		wh.Timeout = d
	}
	return nil
}

func parseURLs(urls []string) ([]*url.URL, error) {
	ret := make([]*url.URL, len(urls))
	for i, u := range urls {
		parsed, err := url.Parse(u)
		if err != nil {
			return nil, err
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return nil, fmt.Errorf("%s: scheme should be http or https", u)
		}
		ret[i] = parsed
	}
	return ret, nil
}
