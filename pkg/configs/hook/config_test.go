package config_test

import (
	"testing"
	"time"

	config "github.com/opst/knitsim/pkg/configs/hook"
)

func TestUnmarshal(t *testing.T) {
	t.Run("When lifecycle hooks are configured, Then they are parsed", func(t *testing.T) {
		cfg, err := config.Unmarshal([]byte(`
lifecycle:
  before:
    - http://hook.example.com/before
  after:
    - http://hook.example.com/after1
    - https://hook.example.com/after2
  timeout: 3s
`))
		if err != nil {
			t.Fatal(err)
		}

		before := []string{}
		for _, u := range cfg.Lifecycle.Before {
			before = append(before, u.String())
		}
		after := []string{}
		for _, u := range cfg.Lifecycle.After {
			after = append(after, u.String())
		}
		if len(before) != 1 || before[0] != "http://hook.example.com/before" {
			t.Errorf("before: actual=%+v", before)
		}
		if len(after) != 2 || after[1] != "https://hook.example.com/after2" {
			t.Errorf("after: actual=%+v", after)
		}
		if actual, expect := cfg.Lifecycle.Timeout, 3*time.Second; actual != expect {
			t.Errorf("timeout: actual=%+v, expect=%+v", actual, expect)
		}
	})

	t.Run("When nothing is configured, Then there are no hooks", func(t *testing.T) {
		cfg, err := config.Unmarshal([]byte(`{}`))
		if err != nil {
			t.Fatal(err)
		}
		if len(cfg.Lifecycle.Before) != 0 || len(cfg.Lifecycle.After) != 0 {
			t.Errorf("unexpected hooks: %+v", cfg)
		}
	})

	for name, content := range map[string]string{
		"scheme":   "lifecycle:\n  before: [ftp://example.com]\n",
		"timeout":  "lifecycle:\n  timeout: soon\n",
		"not list": "lifecycle:\n  after: {a: b}\n",
	} {
		t.Run("When "+name+" is wrong, Then it is an error", func(t *testing.T) {
			if _, err := config.Unmarshal([]byte(content)); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}
