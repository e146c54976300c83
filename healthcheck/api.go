// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

var (
	ErrStatus = errors.New("status code is invalid")
)

var (
	// APIURL is the healthchecks.io management API
	APIURL = "https://healthchecks.io/api/v3"

	// PingBaseURL is prepended to a check id to form its ping url
	PingBaseURL = "https://hc-ping.com"
)

// Signal is the state reported by a ping
type Signal string

const (
	Start   Signal = "start"
	Success Signal = ""
	Fail    Signal = "fail"
)

type createReq struct {
	APIKey      string   `json:"api_key"`
	Name        string   `json:"name"`
	Description string   `json:"desc,omitempty"`
	Grace       int      `json:"grace"`
	Schedule    string   `json:"schedule"`
	Slug        string   `json:"slug"`
	Tags        string   `json:"tags"`
	Timezone    string   `json:"tz"`
	Unique      []string `json:"unique"`
}

type createResp struct {
	PingURL string `json:"ping_url"`
}

// Create a new healthchecks.io check and return the id
func Create(name string, slug string, tags []string, schedule string) (string, error) {
	command := createReq{
		APIKey:      viper.GetString("healthchecks.apikey"),
		Name:        name,
		Description: "intangible capital build",
		Slug:        slug,
		Tags:        strings.Join(tags, " "),
		Grace:       3600,
		Schedule:    schedule,
		Timezone:    "America/New_York",
		Unique:      []string{"slug"},
	}

	result := createResp{}

	client := resty.New()
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(command).
		SetResult(&result).
		Post(APIURL + "/checks/")

	if err != nil {
		return "", err
	}

	if resp.StatusCode() > 201 {
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	checkID := strings.Split(result.PingURL, "/")
	healthCheckID := checkID[len(checkID)-1]

	return healthCheckID, nil
}

// PingURL returns the url that signals are sent to for the check id
func PingURL(id string) string {
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(PingBaseURL, "/"), id)
}

// Ping sends a signal to the check at pingURL. The message, if any, is
// attached as the request body and shows up in the check's event log. An
// empty pingURL disables monitoring and Ping does nothing.
func Ping(ctx context.Context, pingURL string, signal Signal, message string) error {
	if pingURL == "" {
		return nil
	}

	url := strings.TrimSuffix(pingURL, "/")
	if signal != Success {
		url = fmt.Sprintf("%s/%s", url, signal)
	}

	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(3)

	resp, err := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/plain").
		SetBody(message).
		Post(url)

	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("Signal", signal.String()).Msg("healthcheck ping failed")
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	return nil
}

func (signal Signal) String() string {
	if signal == Success {
		return "success"
	}
	return string(signal)
}
