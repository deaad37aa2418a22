package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
)

func TestMap(t *testing.T) {
	m := NewMap(map[string]string{"Port": "9000"})
	for _, key := range []string{"port", "PORT", "Port"} {
		value, found := m.Lookup(key)
		if !found || value != "9000" {
			t.Fatal("lookup failed for", key)
		}
	}
	if _, found := m.Lookup("host"); found {
		t.Fatal("host should not be set")
	}
}

func TestEnv(t *testing.T) {
	env := &Env{
		Prefix: EnvPrefix,
		LookupEnv: func(key string) (string, bool) {
			switch key {
			case "TCPPROBE_PORT":
				return "9000", true
			case "TCPPROBE_PCAP_IFACE":
				return "lo", true
			}
			return "", false
		},
	}
	if value, found := env.Lookup("Port"); !found || value != "9000" {
		t.Fatal("unexpected port", value, found)
	}
	if value, found := env.Lookup("pcap-iface"); !found || value != "lo" {
		t.Fatal("unexpected pcap-iface", value, found)
	}
	if _, found := env.Lookup("host"); found {
		t.Fatal("host should not be set")
	}
}

func TestEnvUsesProcessEnvironment(t *testing.T) {
	t.Setenv("TCPPROBE_HOST", "10.0.0.1")
	if value, found := NewEnv().Lookup("HOST"); !found || value != "10.0.0.1" {
		t.Fatal("unexpected host", value, found)
	}
}

func TestFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("host", "", "")
	fs.String("port", "", "")
	if err := fs.Parse([]string{"--port", "9000"}); err != nil {
		t.Fatal(err)
	}
	flags := &Flags{FlagSet: fs}
	if value, found := flags.Lookup("PORT"); !found || value != "9000" {
		t.Fatal("unexpected port", value, found)
	}
	if _, found := flags.Lookup("host"); found {
		t.Fatal("unchanged flags should not be set")
	}
	if _, found := flags.Lookup("nonexistent"); found {
		t.Fatal("unknown flags should not be set")
	}
}

func TestParseFile(t *testing.T) {
	t.Run("on success", func(t *testing.T) {
		data := []byte(`{
			// where the host listens
			"Host": "example.com",
			"port": 9000,
			"verbose": true,
		}`)
		m, err := ParseFile(data)
		if err != nil {
			t.Fatal(err)
		}
		expect := Map{"host": "example.com", "port": "9000", "verbose": "true"}
		if diff := cmp.Diff(expect, m); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("with invalid JSON", func(t *testing.T) {
		if _, err := ParseFile([]byte(`{`)); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("with unsupported values", func(t *testing.T) {
		if _, err := ParseFile([]byte(`{"port": [1, 2]}`)); err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestReadFileNonexistent(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected an error")
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.hujson")
	data := []byte(`{"host": "file.example.com", "port": "1000", "network": "tcp6", "dns": "8.8.8.8:53"}`)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TCPPROBE_PORT", "2000")
	t.Setenv("TCPPROBE_NETWORK", "tcp")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("port", "", "")
	fs.String("network", "", "")
	if err := fs.Parse([]string{"--network", "tcp4"}); err != nil {
		t.Fatal(err)
	}

	provider, err := Load(fs, path)
	if err != nil {
		t.Fatal(err)
	}
	expect := map[string]string{
		KeyHost:      "file.example.com", // from file
		KeyPort:      "2000",             // env beats file
		KeyNetwork:   "tcp4",             // flag beats env
		KeyDNS:       "8.8.8.8:53",       // from file
		KeyPcapIface: "any",              // from defaults
		KeyLogDir:    "",                 // unset
	}
	got := make(map[string]string)
	for key := range expect {
		got[key] = String(provider, key)
	}
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	provider, err := Load(fs, "")
	if err != nil {
		t.Fatal(err)
	}
	if String(provider, KeyHost) != "localhost" {
		t.Fatal("expected the default host")
	}
}

func TestLoadWithMissingFile(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if _, err := Load(fs, filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected an error")
	}
}

func TestBool(t *testing.T) {
	cases := []struct {
		value  Map
		expect bool
		fails  bool
	}{
		{value: Map{}, expect: false},
		{value: Map{"verbose": ""}, expect: false},
		{value: Map{"verbose": "true"}, expect: true},
		{value: Map{"verbose": "1"}, expect: true},
		{value: Map{"verbose": "false"}, expect: false},
		{value: Map{"verbose": "maybe"}, fails: true},
	}
	for _, tc := range cases {
		got, err := Bool(tc.value, KeyVerbose)
		if (err != nil) != tc.fails {
			t.Fatal("unexpected error", tc.value, err)
		}
		if got != tc.expect {
			t.Fatal("unexpected value", tc.value, got)
		}
	}
}
