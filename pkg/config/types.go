package config

import (
	"fmt"
	"slices"
)

const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

type Log struct {
	Level    string `default:"info" desc:"日志级别 trace|debug|info|warn|error"`
	Path     string `desc:"日志文件存放目录,为空则只输出到控制台"`
	MaxSize  uint64 `default:"1048576" desc:"日志文件大小，单位：字节"`
	MaxFiles uint64 `default:"7" desc:"最大日志文件数量"`
	NoColor  bool   `desc:"控制台日志不使用颜色"`
}

type Output struct {
	Format   string `default:"yaml" desc:"输出格式 yaml|json"`
	Details  bool   `desc:"输出编解码器详细信息"`
	Parallel int    `default:"4" desc:"同时解析的文件数量"`
}

// Validate rejects values the loader cannot reject by type alone.
func (o *Output) Validate() error {
	if !slices.Contains([]string{FormatYAML, FormatJSON}, o.Format) {
		return fmt.Errorf("output.format %q: want %s or %s", o.Format, FormatYAML, FormatJSON)
	}
	if o.Parallel < 1 {
		return fmt.Errorf("output.parallel %d: want at least 1", o.Parallel)
	}
	return nil
}

// FMP4Info is the configuration of the fmp4info command.
type FMP4Info struct {
	Log    Log
	Output Output
}
