/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package emulator

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/greenlab/go-novaxr/pkg/layers"
)

type Metrics struct {
	Registry     *prometheus.Registry
	Commands     *prometheus.CounterVec
	Transactions prometheus.Counter
	SendErrors   prometheus.Counter
	Streaming    prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "novaxr_commands_total",
				Help: "Received commands by kind",
			},
			[]string{"kind"},
		),
		Transactions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "novaxr_transactions_sent_total",
			Help: "Transactions sent to the peer",
		}),
		SendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "novaxr_send_errors_total",
			Help: "Datagrams that could not be sent",
		}),
		Streaming: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "novaxr_streaming",
			Help: "1 if the emulator is streaming",
		}),
	}
	m.Registry.MustRegister(m.Commands, m.Transactions, m.SendErrors, m.Streaming)
	return m
}

func (m *Metrics) observeCommand(kind layers.CommandKind) {
	m.Commands.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) observeState(state AcquisitionState) {
	if state == StateStreaming {
		m.Streaming.Set(1)
	} else {
		m.Streaming.Set(0)
	}
}
