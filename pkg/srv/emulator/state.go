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
	"github.com/greenlab/go-novaxr/pkg/layers"
)

type AcquisitionState int

const (
	StateIdle AcquisitionState = iota
	StateStreaming
)

func (s AcquisitionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	}
	return "unknown"
}

// Next returns the state after the command. Only start and stop commands change it,
// both are idempotent.
func (s AcquisitionState) Next(kind layers.CommandKind) AcquisitionState {
	switch kind {
	case layers.CommandStartStream:
		return StateStreaming
	case layers.CommandStopStream:
		return StateIdle
	}
	return s
}
