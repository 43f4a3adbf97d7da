/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operations

import (
	"github.com/depress-xyz/depress/common/metrics"
)

var depressVersion = metrics.GaugeOpts{
	Name:       "depress_version",
	Help:       "The active version of depress.",
	LabelNames: []string{"version"},
}

func versionGauge(provider metrics.Provider) metrics.Gauge {
	return provider.NewGauge(depressVersion)
}
