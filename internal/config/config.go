// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads deskauth settings from defaults, an optional YAML
// file and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/holomush/deskauth/internal/auth"
	"github.com/holomush/deskauth/internal/xdg"
)

// CodeLoadFailed marks a config file that exists but cannot be read or parsed.
const CodeLoadFailed = "CONFIG_LOAD_FAILED"

// Config keys. Flag names and YAML keys are identical.
const (
	KeyLogFormat         = "log-format"
	KeyLogLevel          = "log-level"
	KeyMetricsAddr       = "metrics-addr"
	KeyMinPasswordLength = "min-password-length"
	KeyArgon2MemoryKiB   = "argon2-memory-kib"
	KeyArgon2Iterations  = "argon2-iterations"
	KeyArgon2Parallelism = "argon2-parallelism"
	KeyArgon2SaltLength  = "argon2-salt-length"
	KeyArgon2KeyLength   = "argon2-key-length"
)

// Config is the effective deskauth configuration.
type Config struct {
	LogFormat         string `koanf:"log-format" yaml:"log-format"`
	LogLevel          string `koanf:"log-level" yaml:"log-level"`
	MetricsAddr       string `koanf:"metrics-addr" yaml:"metrics-addr"`
	MinPasswordLength int    `koanf:"min-password-length" yaml:"min-password-length"`
	Argon2MemoryKiB   int    `koanf:"argon2-memory-kib" yaml:"argon2-memory-kib"`
	Argon2Iterations  int    `koanf:"argon2-iterations" yaml:"argon2-iterations"`
	Argon2Parallelism int    `koanf:"argon2-parallelism" yaml:"argon2-parallelism"`
	Argon2SaltLength  int    `koanf:"argon2-salt-length" yaml:"argon2-salt-length"`
	Argon2KeyLength   int    `koanf:"argon2-key-length" yaml:"argon2-key-length"`
}

// Default returns the built-in configuration.
func Default() Config {
	params := auth.DefaultArgon2idParams()
	return Config{
		LogFormat:         "json",
		LogLevel:          "info",
		MinPasswordLength: auth.DefaultMinPasswordLength,
		Argon2MemoryKiB:   int(params.MemoryKiB),
		Argon2Iterations:  int(params.Iterations),
		Argon2Parallelism: int(params.Parallelism),
		Argon2SaltLength:  int(params.SaltLength),
		Argon2KeyLength:   int(params.KeyLength),
	}
}

// RegisterFlags defines one flag per config key on fs, defaulting to Default().
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(KeyLogFormat, d.LogFormat, "log format (json or text)")
	fs.String(KeyLogLevel, d.LogLevel, "log level (debug, info, warn, error)")
	fs.String(KeyMetricsAddr, d.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.Int(KeyMinPasswordLength, d.MinPasswordLength, "minimum password length in characters")
	fs.Int(KeyArgon2MemoryKiB, d.Argon2MemoryKiB, "argon2id memory cost in KiB")
	fs.Int(KeyArgon2Iterations, d.Argon2Iterations, "argon2id time cost")
	fs.Int(KeyArgon2Parallelism, d.Argon2Parallelism, "argon2id parallelism")
	fs.Int(KeyArgon2SaltLength, d.Argon2SaltLength, "salt length in bytes")
	fs.Int(KeyArgon2KeyLength, d.Argon2KeyLength, "derived key length in bytes")
}

// Load builds the effective configuration.
//
// An explicit path must exist. An empty path falls back to the XDG config
// file, which is skipped when absent. Only flags the user set override the
// file; flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		if p, err := xdg.ConfigFile(); err == nil {
			path = p
		}
	}

	if path != "" {
		if err := loadFile(k, path, explicit); err != nil {
			return Config{}, err
		}
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, changedOnly(flags)), nil); err != nil {
			return Config{}, oops.Code(CodeLoadFailed).Wrapf(err, "load flags")
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, oops.Code(auth.CodeInvalidConfig).With("path", path).Wrapf(err, "decode config")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(k *koanf.Koanf, path string, explicit bool) error {
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return oops.Code(CodeLoadFailed).With("path", path).Wrapf(err, "stat config file")
	}
	if err := k.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
		return oops.Code(CodeLoadFailed).With("path", path).Wrapf(err, "load config file")
	}
	return nil
}

// changedOnly keeps flags the user set so unset flags never mask file values.
func changedOnly(fs *pflag.FlagSet) func(*pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		if !f.Changed {
			return "", nil
		}
		return f.Name, posflag.FlagVal(fs, f)
	}
}

type intRange struct {
	key      string
	value    int
	min, max int
}

// Validate checks every key against its allowed values.
func (c Config) Validate() error {
	switch c.LogFormat {
	case "json", "text":
	default:
		return invalid(KeyLogFormat, c.LogFormat, "must be 'json' or 'text'")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid(KeyLogLevel, c.LogLevel, "must be debug, info, warn or error")
	}

	ranges := []intRange{
		{KeyMinPasswordLength, c.MinPasswordLength, auth.DefaultMinPasswordLength, 1024},
		{KeyArgon2MemoryKiB, c.Argon2MemoryKiB, 8, 1 << 20},
		{KeyArgon2Iterations, c.Argon2Iterations, 1, 20},
		{KeyArgon2Parallelism, c.Argon2Parallelism, 1, 64},
		{KeyArgon2SaltLength, c.Argon2SaltLength, 8, 64},
		{KeyArgon2KeyLength, c.Argon2KeyLength, 16, 64},
	}
	for _, r := range ranges {
		if r.value < r.min || r.value > r.max {
			return oops.Code(auth.CodeInvalidConfig).
				With("key", r.key).
				With("value", r.value).
				Errorf("invalid %s: %d is outside %d..%d", r.key, r.value, r.min, r.max)
		}
	}

	// argon2 requires at least 8 KiB of memory per lane.
	if c.Argon2MemoryKiB < 8*c.Argon2Parallelism {
		return oops.Code(auth.CodeInvalidConfig).
			With("key", KeyArgon2MemoryKiB).
			Errorf("invalid %s: %d is below 8 KiB per lane for parallelism %d",
				KeyArgon2MemoryKiB, c.Argon2MemoryKiB, c.Argon2Parallelism)
	}
	return nil
}

func invalid(key, value, rule string) error {
	return oops.Code(auth.CodeInvalidConfig).
		With("key", key).
		With("value", value).
		Errorf("invalid %s %q: %s", key, value, rule)
}

// Policy returns the password policy described by c.
func (c Config) Policy() auth.PasswordPolicy {
	return auth.PasswordPolicy{MinLength: c.MinPasswordLength}
}

// HasherParams returns the argon2id parameters described by c.
// Call only on a validated Config.
func (c Config) HasherParams() auth.Argon2idParams {
	return auth.Argon2idParams{
		MemoryKiB:   uint32(c.Argon2MemoryKiB),
		Iterations:  uint32(c.Argon2Iterations),
		Parallelism: uint8(c.Argon2Parallelism),
		SaltLength:  uint32(c.Argon2SaltLength),
		KeyLength:   uint32(c.Argon2KeyLength),
	}
}

// YAML renders c in the config file format.
func (c Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, oops.Wrapf(err, "marshal config")
	}
	return out, nil
}
