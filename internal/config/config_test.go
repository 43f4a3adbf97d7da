/*
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func writeConfig(t *testing.T, contents string) string {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "depress.yaml"), []byte(contents), 0o600)
	require.NoError(t, err)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	loaded, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Empty(t, loaded.File)

	require.Equal(t, "0.0.0.0:9999", loaded.Chaincode.Address)
	require.False(t, loaded.Chaincode.TLS.Enabled)
	require.Equal(t, 60*time.Second, loaded.Chaincode.KeepAlive.Interval)
	require.Equal(t, 20*time.Second, loaded.Chaincode.KeepAlive.Timeout)
	require.Equal(t, "127.0.0.1:9443", loaded.Operations.ListenAddress)
	require.Equal(t, "disabled", loaded.Metrics.Provider)
	require.Equal(t, "info", loaded.Logging.Spec)
}

func TestLoadFile(t *testing.T) {
	dir := writeConfig(t, `
Chaincode:
  ID: depress:abc123
  Address: 127.0.0.1:7052
  KeepAlive:
    Interval: 30s
Metrics:
  Provider: prometheus
Logging:
  Spec: depress=debug:info
  Format: json
`)
	loaded, err := Load(t.TempDir(), dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "depress.yaml"), loaded.File)

	require.Equal(t, "depress:abc123", loaded.Chaincode.ID)
	require.Equal(t, "127.0.0.1:7052", loaded.Chaincode.Address)
	require.Equal(t, 30*time.Second, loaded.Chaincode.KeepAlive.Interval)
	require.Equal(t, 20*time.Second, loaded.Chaincode.KeepAlive.Timeout, "unset keys keep their default")
	require.Equal(t, "prometheus", loaded.Metrics.Provider)
	require.Equal(t, "depress=debug:info", loaded.Logging.Spec)
	require.Equal(t, "json", loaded.Logging.Format)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("DEPRESS_CHAINCODE_ID", "depress:env")
	t.Setenv("DEPRESS_CHAINCODE_KEEPALIVE_TIMEOUT", "5s")
	t.Setenv("DEPRESS_OPERATIONS_TLS_CLIENTCACERTFILES", "[a.pem, b.pem]")

	loaded, err := Load(writeConfig(t, "Chaincode:\n  ID: depress:file\n"))
	require.NoError(t, err)
	require.Equal(t, "depress:env", loaded.Chaincode.ID)
	require.Equal(t, 5*time.Second, loaded.Chaincode.KeepAlive.Timeout)
	require.Equal(t, []string{"a.pem", "b.pem"}, loaded.Operations.TLS.ClientCACertFiles)
}

func TestLoadConfigPathEnvironment(t *testing.T) {
	dir := writeConfig(t, "Chaincode:\n  Address: 10.0.0.1:9999\n")
	t.Setenv("DEPRESS_CFG_PATH", dir)
	require.Equal(t, []string{dir, ".", "/etc/depress"}, ConfigPaths())

	loaded, err := Load()
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1:9999", loaded.Chaincode.Address)
}

func TestLoadTLSFromFiles(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "key.pem")
	certFile := filepath.Join(dir, "cert.pem")
	require.NoError(t, os.WriteFile(keyFile, []byte("key material"), 0o600))
	require.NoError(t, os.WriteFile(certFile, []byte("cert material"), 0o600))
	t.Setenv("DEPRESS_CHAINCODE_TLS_CERT_FILE", certFile)

	loaded, err := Load(writeConfig(t, `
Chaincode:
  TLS:
    Enabled: true
    Key:
      File: `+keyFile+`
`))
	require.NoError(t, err)

	props := loaded.Chaincode.TLSProperties()
	require.False(t, props.Disabled)
	require.Equal(t, []byte("key material"), props.Key)
	require.Equal(t, []byte("cert material"), props.Cert)
	require.Empty(t, props.ClientCACerts)
}

func TestLoadTLSFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"DEPRESS_CHAINCODE_TLS_KEY_FILE":           "key material",
		"DEPRESS_CHAINCODE_TLS_CERT_FILE":          "cert material",
		"DEPRESS_CHAINCODE_TLS_CLIENTCACERTS_FILE": "ca material",
	}
	for env, contents := range files {
		path := filepath.Join(dir, env)
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
		t.Setenv(env, path)
	}
	t.Setenv("DEPRESS_CHAINCODE_TLS_ENABLED", "true")

	loaded, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "key material", loaded.Chaincode.TLS.Key)
	require.Equal(t, "cert material", loaded.Chaincode.TLS.Cert)
	require.Equal(t, "ca material", loaded.Chaincode.TLS.ClientCACerts)
}

func TestLoadTLSInline(t *testing.T) {
	loaded, err := Load(writeConfig(t, `
Chaincode:
  TLS:
    Enabled: true
    Key: inline key
    Cert: inline cert
`))
	require.NoError(t, err)
	require.Equal(t, "inline key", loaded.Chaincode.TLS.Key)
	require.Equal(t, "inline cert", loaded.Chaincode.TLS.Cert)
	require.Empty(t, loaded.Chaincode.TLS.ClientCACerts)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		errMsg   string
	}{
		{
			name:     "UnknownKey",
			contents: "Chaincode:\n  Bogus: true\n",
			errMsg:   "failed to unmarshal configuration",
		},
		{
			name:     "BadDuration",
			contents: "Chaincode:\n  KeepAlive:\n    Interval: forever\n",
			errMsg:   "failed to unmarshal configuration",
		},
		{
			name:     "UnknownMetricsProvider",
			contents: "Metrics:\n  Provider: statsd\n",
			errMsg:   `unknown metrics provider "statsd"`,
		},
		{
			name:     "UnknownLoggingFormat",
			contents: "Logging:\n  Format: xml\n",
			errMsg:   `unknown logging format "xml"`,
		},
		{
			name:     "NegativeKeepalive",
			contents: "Chaincode:\n  KeepAlive:\n    Timeout: -1s\n",
			errMsg:   "keepalive durations must not be negative",
		},
		{
			name:     "TLSWithoutKey",
			contents: "Chaincode:\n  TLS:\n    Enabled: true\n",
			errMsg:   "chaincode TLS is enabled but the key or certificate is missing",
		},
		{
			name:     "MalformedYAML",
			contents: "Chaincode: [",
			errMsg:   "failed to read",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.contents))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestKeepaliveParams(t *testing.T) {
	c := Chaincode{KeepAlive: KeepAlive{Interval: time.Minute, Timeout: time.Second, MaxConnectionIdle: time.Hour}}
	ka := c.KeepaliveParams()
	require.Equal(t, time.Minute, ka.Time)
	require.Equal(t, time.Second, ka.Timeout)
	require.Equal(t, time.Hour, ka.MaxConnectionIdle)
}

func TestYAML(t *testing.T) {
	t.Setenv("DEPRESS_METRICS_PROVIDER", "prometheus")
	loaded, err := Load(t.TempDir())
	require.NoError(t, err)

	out, err := loaded.YAML()
	require.NoError(t, err)

	settings := map[string]interface{}{}
	require.NoError(t, yaml.Unmarshal(out, &settings))
	metrics, ok := settings["metrics"].(map[interface{}]interface{})
	require.True(t, ok)
	require.Equal(t, "prometheus", metrics["provider"])
}
