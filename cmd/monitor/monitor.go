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

package monitor

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/greenlab/go-novaxr/pkg/command"
	"github.com/greenlab/go-novaxr/pkg/config"
)

const (
	AddressOptionName = "address"
	PortOptionName    = "port"
	CountOptionName   = "count"
	PrintOptionName   = "print"
	RecordOptionName  = "record"
	RedisOptionName   = "redis"
	DBOptionName      = "db"
)

const (
	monitorExample = `
Print five transactions from the local emulator
# go-novaxr monitor --count 5 --print

Record a session into the sample database and forward it to redis
# go-novaxr monitor --record morning --redis 127.0.0.1:6379
`
)

func NewCommand(cfg *config.Config) *cobra.Command {
	var address, redisAddr, dbPath string
	var port int
	opts := command.MonitorOptions{}
	cmd := &cobra.Command{
		Use:     "monitor",
		Short:   "Drive a NovaXR device like the host driver and consume its telemetry",
		Example: monitorExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			if address != "" {
				cfg.MonitorConfig.DeviceAddress = address
			}
			if port != 0 {
				cfg.MonitorConfig.DevicePort = port
			}
			if dbPath != "" {
				cfg.MonitorConfig.DBPath = dbPath
			}
			if redisAddr != "" {
				cfg.MonitorConfig.RedisAddr = redisAddr
				opts.Redis = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if opts.Count < 0 {
				return config.ErrInvalidConfig{What: fmt.Sprintf("count %d", opts.Count)}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return command.StartMonitor(ctx, cfg, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&address, AddressOptionName, "", fmt.Sprintf("Device address. E.g. %s", config.DefaultMonitorDeviceAddress))
	cmd.Flags().IntVar(&port, PortOptionName, 0, fmt.Sprintf("Device port. E.g. %d", config.DefaultMonitorDevicePort))
	cmd.Flags().IntVar(&opts.Count, CountOptionName, 0, "Stop after this many transactions. Zero means until interrupted")
	cmd.Flags().BoolVar(&opts.Print, PrintOptionName, false, "Print decoded samples")
	cmd.Flags().StringVar(&opts.Session, RecordOptionName, "", "Record samples under this session name")
	cmd.Flags().StringVar(&redisAddr, RedisOptionName, "", "Publish samples to this redis server")
	cmd.Flags().StringVar(&dbPath, DBOptionName, "", fmt.Sprintf("Sample database. Default %s", config.DefaultDBPath()))

	return cmd
}
