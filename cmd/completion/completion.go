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

package completion

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	ShellOptionName = "shell"
)

const (
	completionExample = `
Save bash completion to a file
# go-novaxr completion > $HOME/.go-novaxr_completions

Apply zsh completions to the current shell
# source <(go-novaxr completion --shell zsh)
`
)

// NewCommand creates a cobra command object for generating shell completion scripts
func NewCommand() *cobra.Command {
	var shell string
	cmd := &cobra.Command{
		Use:     "completion",
		Short:   "Generate completion script for bash, zsh or fish",
		Example: completionExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch shell {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return fmt.Errorf("unsupported shell %q", shell)
			}
		},
	}
	cmd.Flags().StringVar(&shell, ShellOptionName, "bash", "Shell to generate completion for")
	return cmd
}
