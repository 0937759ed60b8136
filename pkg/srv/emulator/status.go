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

	"sigs.k8s.io/yaml"
)

// Status is a read-only snapshot of the emulator session published after every tick
type Status struct {
	State        string `json:"state"`
	Peer         string `json:"peer,omitempty"`
	Sequence     uint8  `json:"sequence"`
	Transactions uint64 `json:"transactions"`
	Unrecognized uint64 `json:"unrecognized"`
	SendErrors   uint64 `json:"sendErrors"`
}

func (s *Status) String() string {
	result, err := yaml.Marshal(s)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("---\n%s", string(result))
}
