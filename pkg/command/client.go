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
	"errors"
	"fmt"

	"github.com/imroc/req"

	"github.com/greenlab/go-novaxr/pkg/config"
	"github.com/greenlab/go-novaxr/pkg/srv/emulator"
)

type ApiClient struct {
	*config.Config
	ApiPrefix string
}

func NewApiClient(cfg *config.Config) *ApiClient {
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: fmt.Sprintf("http://%s/api", cfg.ApiEndpoint()),
	}
}

func (c *ApiClient) statusUrl() string {
	return fmt.Sprintf("%s/status", c.ApiPrefix)
}

// Status sends request to get the emulator status snapshot
func (c *ApiClient) Status() (*emulator.Status, error) {
	r, err := req.Get(c.statusUrl())
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != 200 {
		return nil, errors.New(r.Response().Status)
	}
	status := &emulator.Status{}
	err = r.ToJSON(status)
	if err != nil {
		return nil, err
	}
	return status, nil
}
