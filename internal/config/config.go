/*
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"bytes"
	"os"
	"strings"
	"time"

	"github.com/depress-xyz/depress/common/flogging"
	"github.com/depress-xyz/depress/common/viperutil"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"google.golang.org/grpc/keepalive"
	"gopkg.in/yaml.v2"
)

// Prefix is the environment variable prefix. DEPRESS_CHAINCODE_ADDRESS
// overrides chaincode.address.
const Prefix = "DEPRESS"

const configName = "depress"

var logger = flogging.MustGetLogger("config")

// TopLevel is the complete process configuration.
type TopLevel struct {
	Chaincode  Chaincode
	Operations Operations
	Metrics    Metrics
	Logging    Logging
}

// Chaincode configures the chaincode server started by the serve command.
type Chaincode struct {
	ID        string
	Address   string
	TLS       ChaincodeTLS
	KeepAlive KeepAlive
}

// ChaincodeTLS holds PEM material. Each value may be given inline or as
// {File: path}.
type ChaincodeTLS struct {
	Enabled       bool
	Key           string
	Cert          string
	ClientCACerts string
}

type KeepAlive struct {
	Interval          time.Duration
	Timeout           time.Duration
	MaxConnectionIdle time.Duration
}

type Operations struct {
	ListenAddress string
	TLS           OperationsTLS
}

type OperationsTLS struct {
	Enabled            bool
	CertFile           string
	KeyFile            string
	ClientCertRequired bool
	ClientCACertFiles  []string
}

type Metrics struct {
	Provider string
}

type Logging struct {
	Spec   string
	Format string
}

const defaults = `
Chaincode:
  ID: ""
  Address: 0.0.0.0:9999
  TLS:
    Enabled: false
  KeepAlive:
    Interval: 60s
    Timeout: 20s
    MaxConnectionIdle: 0s
Operations:
  ListenAddress: 127.0.0.1:9443
  TLS:
    Enabled: false
    CertFile: ""
    KeyFile: ""
    ClientCertRequired: false
    ClientCACertFiles: []
Metrics:
  Provider: disabled
Logging:
  Spec: info
  Format: ""
`

// ConfigPaths returns the directories searched for depress.yaml: the value
// of DEPRESS_CFG_PATH when set, the working directory and /etc/depress.
func ConfigPaths() []string {
	var paths []string
	if p := os.Getenv(Prefix + "_CFG_PATH"); p != "" {
		paths = append(paths, p)
	}
	return append(paths, ".", "/etc/depress")
}

// Loaded is the result of Load.
type Loaded struct {
	TopLevel
	// File is the configuration file that was merged over the defaults, if
	// any.
	File string

	settings map[string]interface{}
}

// YAML renders the effective settings, environment overrides included.
func (l *Loaded) YAML() ([]byte, error) {
	return yaml.Marshal(l.settings)
}

// Load reads the defaults, merges depress.yaml from the first of paths that
// has one and applies environment overrides. With no paths ConfigPaths is
// searched.
func Load(paths ...string) (*Loaded, error) {
	if len(paths) == 0 {
		paths = ConfigPaths()
	}

	v := viper.New()
	v.SetEnvPrefix(Prefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader([]byte(defaults))); err != nil {
		return nil, errors.Wrap(err, "failed to read default configuration")
	}

	v.SetConfigName(configName)
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	err := v.MergeInConfig()
	switch err.(type) {
	case nil:
		logger.Infof("Loaded configuration from %s", v.ConfigFileUsed())
	case viper.ConfigFileNotFoundError:
		logger.Debugf("No %s.yaml found in %v, using defaults", configName, paths)
	default:
		return nil, errors.Wrapf(err, "failed to read %s", v.ConfigFileUsed())
	}

	loaded := &Loaded{File: v.ConfigFileUsed(), settings: v.AllSettings()}
	if err := viperutil.EnhancedExactUnmarshal(v, &loaded.TopLevel); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal configuration")
	}
	if err := loaded.Validate(); err != nil {
		return nil, err
	}
	return loaded, nil
}

// Validate checks the values that have no usable zero value.
func (t *TopLevel) Validate() error {
	switch t.Metrics.Provider {
	case "prometheus", "disabled":
	default:
		return errors.Errorf("unknown metrics provider %q", t.Metrics.Provider)
	}
	switch strings.ToLower(t.Logging.Format) {
	case "", "json", "logfmt":
	default:
		if !strings.Contains(t.Logging.Format, "%{") {
			return errors.Errorf("unknown logging format %q", t.Logging.Format)
		}
	}
	ka := t.Chaincode.KeepAlive
	if ka.Interval < 0 || ka.Timeout < 0 || ka.MaxConnectionIdle < 0 {
		return errors.New("keepalive durations must not be negative")
	}
	if t.Chaincode.TLS.Enabled && (t.Chaincode.TLS.Key == "" || t.Chaincode.TLS.Cert == "") {
		return errors.New("chaincode TLS is enabled but the key or certificate is missing")
	}
	return nil
}

// TLSProperties converts the chaincode TLS settings for shim.ChaincodeServer.
func (c Chaincode) TLSProperties() shim.TLSProperties {
	return shim.TLSProperties{
		Disabled:      !c.TLS.Enabled,
		Key:           []byte(c.TLS.Key),
		Cert:          []byte(c.TLS.Cert),
		ClientCACerts: []byte(c.TLS.ClientCACerts),
	}
}

// KeepaliveParams converts the keepalive settings for shim.ChaincodeServer.
func (c Chaincode) KeepaliveParams() *keepalive.ServerParameters {
	return &keepalive.ServerParameters{
		Time:              c.KeepAlive.Interval,
		Timeout:           c.KeepAlive.Timeout,
		MaxConnectionIdle: c.KeepAlive.MaxConnectionIdle,
	}
}
