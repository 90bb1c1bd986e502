package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, text string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestDefault 测试结构体标签中的默认值
func TestDefault(t *testing.T) {
	t.Run(t.Name(), func(t *testing.T) {
		var conf FMP4Info
		if _, err := Parse(&conf, filepath.Join(t.TempDir(), "missing.yaml"), "FMP4INFO"); err != nil {
			t.Fatal(err)
		}
		if conf.Log.Level != "info" || conf.Log.MaxSize != 1048576 || conf.Log.MaxFiles != 7 || conf.Log.Path != "" {
			t.Errorf("log = %+v", conf.Log)
		}
		if conf.Output.Format != FormatYAML || conf.Output.Parallel != 4 || conf.Output.Details {
			t.Errorf("output = %+v", conf.Output)
		}
	})
}

// TestUserFile 测试配置文件覆盖默认值
func TestUserFile(t *testing.T) {
	t.Run(t.Name(), func(t *testing.T) {
		path := writeConfig(t, "log:\n  level: debug\n  maxfiles: 3\noutput:\n  format: json\n  details: true\n  parallel: 2\nunknown: 1\n")
		var conf FMP4Info
		c, err := Parse(&conf, path, "FMP4INFO")
		if err != nil {
			t.Fatal(err)
		}
		if conf.Log.Level != "debug" || conf.Log.MaxFiles != 3 || conf.Log.MaxSize != 1048576 {
			t.Errorf("log = %+v", conf.Log)
		}
		if conf.Output.Format != FormatJSON || !conf.Output.Details || conf.Output.Parallel != 2 {
			t.Errorf("output = %+v", conf.Output)
		}
		if c.Get("log").Get("level").File != "debug" {
			t.Error("file value not recorded")
		}
	})
}

// TestEnv 测试环境变量优先于配置文件
func TestEnv(t *testing.T) {
	t.Run(t.Name(), func(t *testing.T) {
		t.Setenv("FMP4INFO_LOG_LEVEL", "warn")
		t.Setenv("FMP4INFO_OUTPUT_PARALLEL", "8")
		path := writeConfig(t, "log:\n  level: debug\n")
		var conf FMP4Info
		if _, err := Parse(&conf, path, "FMP4INFO"); err != nil {
			t.Fatal(err)
		}
		if conf.Log.Level != "warn" || conf.Output.Parallel != 8 {
			t.Errorf("conf = %+v", conf)
		}
	})
}

func TestEmptyFile(t *testing.T) {
	t.Run(t.Name(), func(t *testing.T) {
		conf, err := LoadFile(writeConfig(t, ""))
		if err != nil || conf != nil {
			t.Errorf("conf = %v, err = %v", conf, err)
		}
	})
}

func TestDuration(t *testing.T) {
	t.Run(t.Name(), func(t *testing.T) {
		var conf struct {
			Timeout time.Duration `default:"10s"`
		}
		var c Config
		if err := c.Parse(&conf); err != nil {
			t.Fatal(err)
		}
		if conf.Timeout != 10*time.Second {
			t.Errorf("default timeout = %v", conf.Timeout)
		}
		if err := c.ParseUserFile(map[string]any{"timeout": "1m"}); err != nil || conf.Timeout != time.Minute {
			t.Errorf("timeout = %v, err = %v", conf.Timeout, err)
		}
		if err := c.ParseUserFile(map[string]any{"timeout": "100"}); err == nil {
			t.Error("duration without unit accepted")
		}
	})
}

func TestInvalid(t *testing.T) {
	t.Run("format", func(t *testing.T) {
		o := Output{Format: "xml", Parallel: 1}
		if o.Validate() == nil {
			t.Error("xml accepted")
		}
	})
	t.Run("mapping", func(t *testing.T) {
		var conf FMP4Info
		if _, err := Parse(&conf, writeConfig(t, "log: debug\n"), "FMP4INFO"); err == nil {
			t.Error("scalar log section accepted")
		}
	})
	t.Run("type", func(t *testing.T) {
		var conf FMP4Info
		if _, err := Parse(&conf, writeConfig(t, "output:\n  parallel: many\n"), "FMP4INFO"); err == nil {
			t.Error("non-numeric parallel accepted")
		}
	})
}
