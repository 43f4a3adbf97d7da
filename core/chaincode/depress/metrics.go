/*
SPDX-License-Identifier: Apache-2.0
*/

package depress

import (
	"github.com/depress-xyz/depress/common/metrics"
)

var (
	instructionCount = metrics.CounterOpts{
		Namespace:  "depress",
		Subsystem:  "chaincode",
		Name:       "instructions",
		Help:       "The number of instructions executed.",
		LabelNames: []string{"instruction", "result"},
	}
	instructionDuration = metrics.HistogramOpts{
		Namespace:  "depress",
		Subsystem:  "chaincode",
		Name:       "instruction_duration",
		Help:       "The time to execute an instruction in seconds.",
		Buckets:    []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		LabelNames: []string{"instruction"},
	}
)

type Metrics struct {
	InstructionCount    metrics.Counter
	InstructionDuration metrics.Histogram
}

func NewMetrics(p metrics.Provider) *Metrics {
	return &Metrics{
		InstructionCount:    p.NewCounter(instructionCount),
		InstructionDuration: p.NewHistogram(instructionDuration),
	}
}
