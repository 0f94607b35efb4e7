package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/creasty/defaults"
	"github.com/spf13/viper"
)

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// Loader reads Config from files and the environment.
type Loader struct {
	opts Options

	mu    sync.RWMutex
	v     *viper.Viper
	files []string
}

// NewLoader prepares a loader; nothing is read until Load.
func NewLoader(opts Options) *Loader {
	opts.applyDefaults()
	return &Loader{opts: opts}
}

// Load is shorthand for NewLoader(opts).Load().
func Load(opts Options) (*Config, error) {
	return NewLoader(opts).Load()
}

// Load merges struct defaults, config files and environment overrides, in
// increasing priority. Missing files are not an error.
func (l *Loader) Load() (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	files := l.configFiles()
	v := viper.New()
	v.SetConfigType(l.opts.FileType)
	registerDefaults(v, "", reflect.ValueOf(cfg).Elem())

	for _, file := range files {
		fileV := viper.New()
		fileV.SetConfigFile(file)
		if err := fileV.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
		for _, key := range fileV.AllKeys() {
			v.Set(key, fileV.Get(key))
		}
	}

	applyEnvOverrides(v, l.opts.EnvPrefix)

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config (path: %s, file: %s.%s): %w",
			l.opts.BasePath, l.opts.FileName, l.opts.FileType, err)
	}

	l.mu.Lock()
	l.v = v
	l.files = files
	l.mu.Unlock()

	return cfg, nil
}

// Default returns a Config holding only the struct defaults.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("set config defaults: %w", err)
	}
	return cfg, nil
}

// Files returns the config files merged by the last Load.
func (l *Loader) Files() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.files...)
}

// Get returns a raw value from the last Load.
func (l *Loader) Get(key string) any {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.v == nil {
		return nil
	}
	return l.v.Get(key)
}

// configFileNames lists candidate base names in merge order.
func (l *Loader) configFileNames() []string {
	name := l.opts.FileName
	names := []string{name, name + ".local"}
	for _, alias := range CurrentMode().aliases() {
		names = append(names, name+"."+alias, name+"."+alias+".local")
	}
	return names
}

func (l *Loader) configFiles() []string {
	var files []string
	for _, name := range l.configFileNames() {
		file := filepath.Join(l.opts.BasePath, name+"."+l.opts.FileType)
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			files = append(files, file)
		}
	}
	return files
}

// registerDefaults records every leaf of rv as a viper default so that
// environment overrides apply to keys no file mentions.
func registerDefaults(v *viper.Viper, prefix string, rv reflect.Value) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			name = strings.ToLower(field.Name)
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		fv := rv.Field(i)
		if fv.Kind() == reflect.Struct {
			registerDefaults(v, key, fv)
			continue
		}
		v.SetDefault(key, fv.Interface())
	}
}

// applyEnvOverrides sets any key whose environment variable is present:
// logging.max-size reads PREFIX_LOGGING_MAX_SIZE.
func applyEnvOverrides(v *viper.Viper, envPrefix string) {
	for _, key := range v.AllKeys() {
		envKey := strings.ToUpper(envKeyReplacer.Replace(key))
		if envPrefix != "" {
			envKey = strings.ToUpper(envPrefix) + "_" + envKey
		}
		if envValue, ok := os.LookupEnv(envKey); ok && envValue != "" {
			v.Set(key, envValue)
		}
	}
}
