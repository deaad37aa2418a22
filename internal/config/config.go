// Package config implements the configuration provider shared by the
// tcpclient and tcphost commands.
//
// Values come from several sources. In order of precedence: command line
// flags, environment variables prefixed with [EnvPrefix], a human-JSON
// configuration file, and built-in defaults. Keys are case-insensitive.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/ooni/tcpprobe/internal/hujsonx"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Configuration keys.
const (
	KeyHost       = "host"
	KeyPort       = "port"
	KeyNetwork    = "network"
	KeyDNS        = "dns"
	KeyLogDir     = "logdir"
	KeyJournalDir = "journaldir"
	KeyPcap       = "pcap"
	KeyPcapIface  = "pcap-iface"
	KeyVerbose    = "verbose"
)

// EnvPrefix is the prefix of the environment variables we read.
const EnvPrefix = "TCPPROBE_"

// Provider looks up a configuration value by key.
type Provider interface {
	// Lookup returns the value of key and whether the key is set. The
	// key is case-insensitive.
	Lookup(key string) (string, bool)
}

// Map is a [Provider] backed by a map. Use [NewMap] to normalize the keys.
type Map map[string]string

var _ Provider = Map{}

// NewMap creates a [Map] lowercasing the keys of values.
func NewMap(values map[string]string) Map {
	out := make(Map, len(values))
	for key, value := range values {
		out[strings.ToLower(key)] = value
	}
	return out
}

// Lookup implements Provider.
func (m Map) Lookup(key string) (string, bool) {
	value, found := m[strings.ToLower(key)]
	return value, found
}

// Defaults returns the built-in defaults.
func Defaults() Map {
	return Map{
		KeyHost:      "localhost",
		KeyNetwork:   "tcp4",
		KeyPcapIface: "any",
	}
}

// Env is a [Provider] reading environment variables. The variable name
// is Prefix followed by the uppercase key with dashes replaced by
// underscores (e.g., "pcap-iface" becomes TCPPROBE_PCAP_IFACE).
type Env struct {
	// Prefix is the variable name prefix.
	Prefix string

	// LookupEnv is the function to lookup variables. When nil,
	// we use [os.LookupEnv].
	LookupEnv func(key string) (string, bool)
}

var _ Provider = &Env{}

// NewEnv creates an [Env] using [EnvPrefix] and the process environment.
func NewEnv() *Env {
	return &Env{Prefix: EnvPrefix}
}

// Lookup implements Provider.
func (e *Env) Lookup(key string) (string, bool) {
	name := e.Prefix + strings.ReplaceAll(strings.ToUpper(key), "-", "_")
	if e.LookupEnv != nil {
		return e.LookupEnv(name)
	}
	return os.LookupEnv(name)
}

// Flags is a [Provider] returning the command line flags that the user
// explicitly set. Flags left to their default value are not set, so
// lower precedence sources can provide a value.
type Flags struct {
	FlagSet *pflag.FlagSet
}

var _ Provider = &Flags{}

// Lookup implements Provider.
func (f *Flags) Lookup(key string) (string, bool) {
	flag := f.FlagSet.Lookup(strings.ToLower(key))
	if flag == nil || !flag.Changed {
		return "", false
	}
	return flag.Value.String(), true
}

// Layered is a [Provider] consulting a list of providers in order
// and returning the first value that is set.
type Layered struct {
	providers []Provider
}

var _ Provider = &Layered{}

// NewLayered creates a [Layered] provider. The providers with the
// highest precedence come first.
func NewLayered(providers ...Provider) *Layered {
	return &Layered{providers: providers}
}

// Lookup implements Provider.
func (l *Layered) Lookup(key string) (string, bool) {
	for _, p := range l.providers {
		if value, found := p.Lookup(key); found {
			return value, true
		}
	}
	return "", false
}

// ReadFile reads a human-JSON configuration file containing a
// single object. Values must be strings, numbers or booleans.
func ReadFile(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	return ParseFile(data)
}

// ParseFile is like [ReadFile] but takes the file content.
func ParseFile(data []byte) (Map, error) {
	var root map[string]any
	if err := hujsonx.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	out := make(Map, len(root))
	for key, value := range root {
		switch v := value.(type) {
		case string:
			out[strings.ToLower(key)] = v
		case float64:
			out[strings.ToLower(key)] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			out[strings.ToLower(key)] = strconv.FormatBool(v)
		default:
			return nil, errors.Errorf("parsing config: unsupported value for %q", key)
		}
	}
	return out, nil
}

// Load builds the [Provider] used by the commands. The path argument
// is the configuration file; when empty we do not read any file.
func Load(flags *pflag.FlagSet, path string) (Provider, error) {
	providers := []Provider{&Flags{FlagSet: flags}, NewEnv()}
	if path != "" {
		file, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		log.Debugf("config: loaded %d keys from %s", len(file), path)
		providers = append(providers, file)
	}
	providers = append(providers, Defaults())
	return NewLayered(providers...), nil
}

// String returns the value of key or the empty string.
func String(p Provider, key string) string {
	value, _ := p.Lookup(key)
	return value
}

// Bool returns the boolean value of key. An unset key is false.
func Bool(p Provider, key string) (bool, error) {
	value, found := p.Lookup(key)
	if !found || value == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.Wrapf(err, "config: %s", key)
	}
	return v, nil
}
