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
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/greenlab/go-novaxr/pkg/command"
	"github.com/greenlab/go-novaxr/pkg/config"
)

const (
	AddressOptionName = "address"
	PortOptionName    = "port"
	TickOptionName    = "tick"
	ApiOptionName     = "api"
)

func NewStartCommand(cfg *config.Config) *cobra.Command {
	var address string
	var port int
	var tick time.Duration
	var api bool
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the device emulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			if address != "" {
				cfg.EmulatorConfig.Address = address
			}
			if port != 0 {
				cfg.EmulatorConfig.Port = port
			}
			if tick != 0 {
				cfg.EmulatorConfig.Tick = tick
			}
			if api {
				cfg.ApiConfig.Enabled = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return command.StartEmulator(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&address, AddressOptionName, "", fmt.Sprintf("Address to bind. E.g. %s", config.DefaultEmulatorAddress))
	cmd.Flags().IntVar(&port, PortOptionName, 0, fmt.Sprintf("Port number to bind. E.g. %d", config.DefaultEmulatorPort))
	cmd.Flags().DurationVar(&tick, TickOptionName, 0, fmt.Sprintf("Receive timeout and telemetry interval. E.g. %s", config.DefaultTick))
	cmd.Flags().BoolVar(&api, ApiOptionName, false, "Serve the status API")

	return cmd
}
