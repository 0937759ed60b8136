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
)

// ErrInvalidCommand returned when the device rejects a config command
type ErrInvalidCommand struct {
	Command string
}

func (e ErrInvalidCommand) Error() string {
	return fmt.Sprintf("Device rejected command: %q", e.Command)
}

// ErrUnexpectedAck returned when the device answers with an unknown byte
type ErrUnexpectedAck struct {
	Command string
	Reply   []byte
}

func (e ErrUnexpectedAck) Error() string {
	return fmt.Sprintf("Unexpected reply to %q: %q", e.Command, e.Reply)
}

// ErrAckTimeout returned when the device does not answer a config command in time
type ErrAckTimeout struct {
	Command string
}

func (e ErrAckTimeout) Error() string {
	return fmt.Sprintf("No ack received for command: %q", e.Command)
}

// ErrNoData returned when no transaction arrives in time
type ErrNoData struct{}

func (e ErrNoData) Error() string {
	return "No data received from device"
}

// ErrBucketNotFound returned when a recorded session does not exist
type ErrBucketNotFound struct {
	Name string
}

func (e ErrBucketNotFound) Error() string {
	return fmt.Sprintf("Bucket not found: %s", e.Name)
}
