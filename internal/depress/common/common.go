/*
SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"os"

	"github.com/depress-xyz/depress/common/flogging"
	"github.com/depress-xyz/depress/internal/config"
	"github.com/pkg/errors"
)

var logger = flogging.MustGetLogger("main")

// InitConfig loads the process configuration and applies its logging
// section.
func InitConfig() (*config.Loaded, error) {
	conf, err := config.Load()
	if err != nil {
		return nil, errors.WithMessage(err, "fatal error when initializing configuration")
	}

	flogging.Init(flogging.Config{
		Format:  conf.Logging.Format,
		LogSpec: conf.Logging.Spec,
		Writer:  os.Stderr,
	})
	if conf.File != "" {
		logger.Debugf("Using configuration file %s", conf.File)
	}
	return conf, nil
}
