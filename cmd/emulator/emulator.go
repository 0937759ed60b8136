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
	"github.com/spf13/cobra"

	"github.com/greenlab/go-novaxr/pkg/config"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emulator",
		Short: "Run and inspect the NovaXR device emulator",
	}
	cmd.AddCommand(NewStartCommand(cfg))
	cmd.AddCommand(NewStatusCommand(cfg))
	return cmd
}
