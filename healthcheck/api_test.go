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
package healthcheck_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anshuchen/prodscope/healthcheck"
)

type request struct {
	method string
	path   string
	body   string
}

var _ = Describe("Healthchecks", func() {
	var (
		server   *httptest.Server
		mu       sync.Mutex
		requests []request
		status   int
	)

	BeforeEach(func() {
		requests = nil
		status = http.StatusOK

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			requests = append(requests, request{method: r.Method, path: r.URL.Path, body: string(body)})
			mu.Unlock()

			if r.URL.Path == "/api/v3/checks/" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusCreated)
				_ = json.NewEncoder(w).Encode(map[string]string{"ping_url": "https://hc-ping.com/5f1b-check"})
				return
			}

			w.WriteHeader(status)
		}))

		healthcheck.APIURL = server.URL + "/api/v3"
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("Ping", func() {
		It("posts each signal to its own path", func() {
			ctx := context.Background()
			url := server.URL + "/abc"

			Expect(healthcheck.Ping(ctx, url, healthcheck.Start, "")).To(Succeed())
			Expect(healthcheck.Ping(ctx, url, healthcheck.Success, "1200 rows")).To(Succeed())
			Expect(healthcheck.Ping(ctx, url, healthcheck.Fail, "boom")).To(Succeed())

			Expect(requests).To(Equal([]request{
				{method: http.MethodPost, path: "/abc/start", body: ""},
				{method: http.MethodPost, path: "/abc", body: "1200 rows"},
				{method: http.MethodPost, path: "/abc/fail", body: "boom"},
			}))
		})

		It("does nothing without a ping url", func() {
			Expect(healthcheck.Ping(context.Background(), "", healthcheck.Start, "")).To(Succeed())
			Expect(requests).To(BeEmpty())
		})

		It("reports an unexpected status", func() {
			status = http.StatusNotFound
			err := healthcheck.Ping(context.Background(), server.URL+"/abc", healthcheck.Success, "")
			Expect(err).To(MatchError(healthcheck.ErrStatus))
		})
	})

	Describe("Create", func() {
		It("returns the id of the new check", func() {
			id, err := healthcheck.Create("intan build", "intan-build", []string{"intan"}, "0 3 * * *")
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal("5f1b-check"))
			Expect(requests).To(HaveLen(1))
			Expect(requests[0].body).To(ContainSubstring(`"slug":"intan-build"`))
		})
	})

	It("builds ping urls from check ids", func() {
		Expect(healthcheck.PingURL("5f1b-check")).To(Equal("https://hc-ping.com/5f1b-check"))
	})
})
