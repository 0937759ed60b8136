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

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/greenlab/go-novaxr/cmd/completion"
	"github.com/greenlab/go-novaxr/cmd/config"
	"github.com/greenlab/go-novaxr/cmd/emulator"
	"github.com/greenlab/go-novaxr/cmd/monitor"
	pkgconfig "github.com/greenlab/go-novaxr/pkg/config"
	"github.com/greenlab/go-novaxr/pkg/log"
)

const (
	LogLevelOptionName = "log-level"
	ConfigOptionName   = "config"
)

// tolerateConfigErrors reports whether the command or one of its parents
// can run with a broken config file, like the config subcommands which repair it.
func tolerateConfigErrors(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[config.AnnotationTolerateConfigErrors]; ok {
			return true
		}
	}
	return false
}

func NewRootCommand(out io.Writer) *cobra.Command {
	var logLevel, configPath string
	cfg := pkgconfig.NewDefaultConfig()
	cmd := &cobra.Command{
		Use:           "go-novaxr",
		Short:         "NovaXR device emulator and monitor",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				cfg.SetPath(configPath)
			}
			loadErr := cfg.Load()
			if loadErr != nil {
				if !tolerateConfigErrors(cmd) {
					return loadErr
				}
				path := cfg.Path()
				*cfg = *pkgconfig.NewDefaultConfig()
				cfg.SetPath(path)
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if err := log.SetLevel(cfg.LogLevel); err != nil {
				return err
			}
			log.Init(cmd.ErrOrStderr(), cfg.LogLevel)
			if loadErr != nil {
				log.Warning("Ignoring config file %s: %s", cfg.Path(), loadErr)
			}
			return nil
		},
	}
	cmd.SetOut(out)
	cmd.AddCommand(config.NewCommand(cfg))
	cmd.AddCommand(emulator.NewCommand(cfg))
	cmd.AddCommand(monitor.NewCommand(cfg))
	cmd.AddCommand(completion.NewCommand())
	cmd.PersistentFlags().StringVar(&logLevel, LogLevelOptionName, "", fmt.Sprintf("Log level. %s", log.HelpLevels))
	cmd.PersistentFlags().StringVar(&configPath, ConfigOptionName, "", fmt.Sprintf("Config file. Default %s", pkgconfig.DefaultConfigPath()))
	return cmd
}
