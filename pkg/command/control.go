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

package command

import (
	"context"
	"io"

	"github.com/greenlab/go-novaxr/pkg/config"
	"github.com/greenlab/go-novaxr/pkg/monitor"
	"github.com/greenlab/go-novaxr/pkg/srv/emulator"
)

// StartEmulator serves the device protocol until ctx is cancelled
func StartEmulator(ctx context.Context, cfg *config.Config) error {
	emu, err := emulator.NewEmulator(cfg, nil)
	if err != nil {
		return err
	}
	return emu.Run(ctx)
}

type MonitorOptions struct {
	Count   int
	Print   bool
	Session string
	Redis   bool
}

// StartMonitor streams from the device into the sinks selected by opts
func StartMonitor(ctx context.Context, cfg *config.Config, opts MonitorOptions, out io.Writer) error {
	client, err := monitor.Dial(cfg.DeviceEndpoint(), cfg.MonitorConfig.Timeout)
	if err != nil {
		return err
	}
	defer client.Close()

	var sinks []monitor.Sink
	if opts.Print {
		sinks = append(sinks, &monitor.Printer{Writer: out})
	}
	if opts.Session != "" {
		recorder, err := monitor.NewRecorder(cfg.MonitorConfig.DBPath, opts.Session)
		if err != nil {
			return err
		}
		defer recorder.Close()
		sinks = append(sinks, recorder)
	}
	if opts.Redis {
		publisher, err := monitor.NewPublisher(ctx, cfg.MonitorConfig.RedisAddr, cfg.MonitorConfig.RedisChannel)
		if err != nil {
			return err
		}
		defer publisher.Close()
		sinks = append(sinks, publisher)
	}

	return monitor.NewMonitor(client, sinks...).Run(ctx, opts.Count)
}
