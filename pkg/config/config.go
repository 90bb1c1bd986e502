package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"reflect"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Ptr      reflect.Value //指向配置结构体值,优先级：环境变量>配置文件>默认值
	Env      any           //环境变量中的值
	File     any           //配置文件中的值
	Default  any           //默认值
	name     string        // 小写
	propsMap map[string]*Config
	props    []*Config
	tag      reflect.StructTag
}

var durationType = reflect.TypeOf(time.Duration(0))

func (config *Config) Get(key string) (v *Config) {
	if config.propsMap == nil {
		config.propsMap = make(map[string]*Config)
	}
	if v, ok := config.propsMap[key]; ok {
		return v
	}
	v = &Config{
		name: key,
	}
	config.propsMap[key] = v
	config.props = append(config.props, v)
	return v
}

func (config *Config) Has(key string) (ok bool) {
	if config.propsMap == nil {
		return false
	}
	_, ok = config.propsMap[strings.ToLower(key)]
	return ok
}

func (config *Config) MarshalJSON() ([]byte, error) {
	if config.propsMap == nil {
		return json.Marshal(config.GetValue())
	}
	return json.Marshal(config.propsMap)
}

func (config *Config) GetValue() any {
	return config.Ptr.Interface()
}

// Desc is the desc tag of the field this node was parsed from.
func (config *Config) Desc() string {
	return config.tag.Get("desc")
}

// Parse 第一步读取配置结构体的默认值和环境变量
func (config *Config) Parse(s any, prefix ...string) error {
	var t reflect.Type
	var v reflect.Value
	if vv, ok := s.(reflect.Value); ok {
		t, v = vv.Type(), vv
	} else {
		t, v = reflect.TypeOf(s), reflect.ValueOf(s)
	}
	if t.Kind() == reflect.Pointer {
		t, v = t.Elem(), v.Elem()
	}

	config.Ptr = v
	config.Default = v.Interface()

	if l := len(prefix); l > 0 && t.Kind() != reflect.Struct {
		name := strings.ToLower(prefix[l-1])
		if tag := config.tag.Get("default"); tag != "" {
			dv, err := config.assign(name, tag)
			if err != nil {
				return fmt.Errorf("default of %s: %w", strings.Join(prefix, "_"), err)
			}
			v.Set(dv)
			config.Default = v.Interface()
		}
		env := strings.Join(prefix, "_")
		if envValue := os.Getenv(env); envValue != "" {
			ev, err := config.assign(name, envValue)
			if err != nil {
				return fmt.Errorf("%s: %w", env, err)
			}
			v.Set(ev)
			config.Env = v.Interface()
		}
	}

	if t.Kind() == reflect.Struct {
		for i, j := 0, t.NumField(); i < j; i++ {
			ft, fv := t.Field(i), v.Field(i)
			if !ft.IsExported() {
				continue
			}
			name := strings.ToLower(ft.Name)
			if tag := ft.Tag.Get("yaml"); tag != "" {
				if tag == "-" {
					continue
				}
				name, _, _ = strings.Cut(tag, ",")
			}
			prop := config.Get(name)
			prop.tag = ft.Tag
			if err := prop.Parse(fv, append(prefix, strings.ToUpper(ft.Name))...); err != nil {
				return err
			}
		}
	}
	return nil
}

// ParseUserFile 第二步读取用户配置文件，环境变量优先
func (config *Config) ParseUserFile(conf map[string]any) error {
	if conf == nil {
		return nil
	}
	config.File = conf
	for k, v := range conf {
		k = strings.ToLower(k)
		if !config.Has(k) {
			continue
		}
		if prop := config.Get(k); prop.props != nil {
			if v == nil {
				continue
			}
			child, ok := v.(map[string]any)
			if !ok {
				return fmt.Errorf("%s: expected a mapping, got %T", k, v)
			}
			if err := prop.ParseUserFile(child); err != nil {
				return fmt.Errorf("%s.%w", k, err)
			}
		} else {
			fv, err := prop.assign(k, v)
			if err != nil {
				return err
			}
			prop.File = fv.Interface()
			if prop.Env == nil {
				prop.Ptr.Set(fv)
			}
		}
	}
	return nil
}

func (config *Config) GetMap() map[string]any {
	m := make(map[string]any)
	for k, v := range config.propsMap {
		if v.props != nil {
			if vv := v.GetMap(); vv != nil {
				m[k] = vv
			}
		} else if v.GetValue() != nil {
			m[k] = v.GetValue()
		}
	}
	if len(m) > 0 {
		return m
	}
	return nil
}

var regexPureNumber = regexp.MustCompile(`^\d+$`)

func (config *Config) assign(k string, v any) (target reflect.Value, err error) {
	ft := config.Ptr.Type()

	source := reflect.ValueOf(v)

	switch ft {
	case durationType:
		target = reflect.New(ft).Elem()
		if !source.IsValid() || source.IsZero() {
			target.SetInt(0)
		} else if source.Type() == durationType {
			target.Set(source)
		} else {
			timeStr := fmt.Sprint(v)
			d, perr := time.ParseDuration(timeStr)
			if perr != nil || regexPureNumber.MatchString(timeStr) {
				return target, fmt.Errorf("%s: invalid duration %q, add a unit (ms, s, m, h)", k, timeStr)
			}
			target.SetInt(int64(d))
		}
	default:
		tmpStruct := reflect.StructOf([]reflect.StructField{
			{
				Name: strings.ToUpper(k),
				Type: ft,
				Tag:  reflect.StructTag(fmt.Sprintf(`yaml:"%s"`, k)),
			},
		})
		tmpValue := reflect.New(tmpStruct)
		if v != nil {
			var out []byte
			if vv, ok := v.(string); ok {
				out = []byte(fmt.Sprintf("%s: %s", k, vv))
			} else if out, err = yaml.Marshal(map[string]any{k: v}); err != nil {
				return
			}
			if err = yaml.Unmarshal(out, tmpValue.Interface()); err != nil {
				return target, fmt.Errorf("%s: %w", k, err)
			}
		}
		target = tmpValue.Elem().Field(0)
	}
	return
}

// LoadFile decodes a yaml config file. A missing or empty file yields no values.
func LoadFile(path string) (conf map[string]any, err error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return
	}
	defer f.Close()
	if err = yaml.NewDecoder(f).Decode(&conf); errors.Is(err, io.EOF) {
		err = nil
	}
	return
}

// Parse fills target from its default tags, the config file at path and the environment,
// in increasing priority. Environment variables are named prefix_FIELD_SUBFIELD.
func Parse(target any, path string, prefix string) (*Config, error) {
	var c Config
	if err := c.Parse(target, prefix); err != nil {
		return nil, err
	}
	conf, err := LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err = c.ParseUserFile(conf); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &c, nil
}
