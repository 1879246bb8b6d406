package config

import (
	"bytes"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/respawn/pkg/errors"
	"github.com/ajitpratap0/respawn/pkg/geom"
	"github.com/ajitpratap0/respawn/pkg/pool"
)

// EnvPrefix prefixes environment overrides, e.g. RESPAWN_SPAWN_SEED.
const EnvPrefix = "RESPAWN"

// Load reads a YAML configuration file, substitutes ${VAR} references,
// applies RESPAWN_* environment overrides and defaults, and validates the
// result.
func Load(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: File path is controlled by caller
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to read config file").
			WithDetail("path", filePath)
	}
	return Parse(data)
}

// Parse is Load for configuration already in memory.
func Parse(data []byte) (*Config, error) {
	v := newViper()
	content := substituteEnvVars(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(content)); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse YAML")
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to filePath as YAML.
func Save(filePath string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil { //nolint:gosec
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.encoding", d.Logging.Encoding)
	v.SetDefault("logging.development", d.Logging.Development)
	v.SetDefault("logging.file.path", "")
	v.SetDefault("spawn.default_policy", d.Spawn.DefaultPolicy.String())
	v.SetDefault("spawn.seed", d.Spawn.Seed)
	v.SetDefault("spawn.reference", d.Spawn.Reference.String())
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
	v.SetDefault("metrics.listen", "")
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("tracing.service_version", d.Tracing.ServiceVersion)
	v.SetDefault("tracing.environment", d.Tracing.Environment)
	v.SetDefault("tracing.sampling_rate", d.Tracing.SamplingRate)
	v.SetDefault("tracing.exporter", d.Tracing.ExporterType)
	v.SetDefault("tracing.batch_timeout", d.Tracing.BatchTimeout.String())
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		vec3SliceHook(),
		mapstructure.TextUnmarshallerHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to decode configuration")
	}

	for i := range cfg.Pools {
		if cfg.Pools[i].Size == 0 {
			cfg.Pools[i].Size = pool.DefaultSize
		}
	}
	return &cfg, nil
}

var vec3Type = reflect.TypeOf(geom.Vec3{})

// vec3SliceHook decodes [x, y, z] and [x, y] lists into geom.Vec3.
func vec3SliceHook() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != vec3Type || f.Kind() != reflect.Slice {
			return data, nil
		}
		items := reflect.ValueOf(data)
		coords := make([]float64, items.Len())
		for i := range coords {
			switch n := items.Index(i).Interface().(type) {
			case int:
				coords[i] = float64(n)
			case int64:
				coords[i] = float64(n)
			case uint64:
				coords[i] = float64(n)
			case float64:
				coords[i] = n
			default:
				return nil, fmt.Errorf("vector component %d is not a number: %v", i, n)
			}
		}
		return geom.FromSlice(coords)
	}
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		varName := content[start+2 : end]
		envValue := os.Getenv(varName)
		content = content[:start] + envValue + content[end+1:]
	}
	return content
}
