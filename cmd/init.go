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
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anshuchen/prodscope/db"
	"github.com/anshuchen/prodscope/healthcheck"
	"github.com/anshuchen/prodscope/library"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type configFile struct {
	Data struct {
		RawDir       string `toml:"raw_dir"`
		ProcessedDir string `toml:"processed_dir"`
	} `toml:"data"`

	Intan struct {
		Funda    string `toml:"funda"`
		Company  string `toml:"company"`
		Founding string `toml:"founding"`
		Output   string `toml:"output"`
	} `toml:"intan"`

	DB struct {
		URL string `toml:"url,omitempty"`
	} `toml:"db"`

	Healthchecks struct {
		APIKey  string `toml:"apikey,omitempty"`
		PingURL string `toml:"ping_url,omitempty"`
	} `toml:"healthchecks"`
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Gather input locations and optional database settings",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		var (
			config    configFile
			monitored bool
			confirmed bool
		)

		myLibrary := &library.Library{}

		config.Intan.Funda = viper.GetString("intan.funda")
		config.Intan.Company = viper.GetString("intan.company")
		config.Intan.Founding = viper.GetString("intan.founding")
		config.Intan.Output = viper.GetString("intan.output")

		form := huh.NewForm(
			// Where the inputs live and where outputs go
			huh.NewGroup(
				huh.NewInput().
					Title("Directory containing the raw WRDS extracts:").
					Value(&config.Data.RawDir),
				huh.NewInput().
					Title("Directory for processed output:").
					Value(&config.Data.ProcessedDir),
			),

			huh.NewGroup(
				huh.NewInput().
					Title("Compustat fundamentals annual file:").
					Value(&config.Intan.Funda),
				huh.NewInput().
					Title("Compustat company file:").
					Value(&config.Intan.Company),
				huh.NewInput().
					Title("Ritter IPO founding date table:").
					Value(&config.Intan.Founding),
				huh.NewInput().
					Title("Output file:").
					Value(&config.Intan.Output),
			),

			// Optional library database
			huh.NewGroup(
				huh.NewInput().
					Title("PostgreSQL DSN for the library database, leave empty to skip (postgres://[user[:password]@][netloc][:port][/dbname][?param1=value1&...])").
					Value(&myLibrary.DBUrl).
					Validate(func(dsn string) error {
						if dsn == "" {
							return nil
						}
						_, err := pgx.ParseConfig(dsn)
						return err
					}),
				huh.NewInput().
					Title("Give the library a name:").
					Value(&myLibrary.Name),
				huh.NewInput().
					Title("Who owns the library?").
					Value(&myLibrary.Owner),
			),

			huh.NewGroup(
				huh.NewConfirm().
					Title("Should a healthchecks.io monitor be created for intan runs?").
					Value(&monitored),
				huh.NewInput().
					Title("healthchecks.io API key (only used when creating a monitor):").
					Value(&config.Healthchecks.APIKey),
			),
		)

		err := form.Run()
		if err != nil {
			log.Fatal().Err(err).Msg("error gathering settings")
		}

		config.DB.URL = myLibrary.DBUrl

		// Print configuration summary
		{
			var sb strings.Builder
			keyword := func(s string) string {
				if s == "" {
					s = "-"
				}
				return lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Render(s)
			}

			isMonitored := "no"
			if monitored {
				isMonitored = "yes"
			}

			fmt.Fprintf(&sb,
				"%s\n\nRaw data: %s\nProcessed data: %s\nFundamentals: %s\nCompany: %s\nFounding: %s\nOutput: %s\n\nDatabase: %s\nLibrary: %s\nMonitored: %s",
				lipgloss.NewStyle().Bold(true).Render("PRODSCOPE CONFIGURATION"),
				keyword(config.Data.RawDir),
				keyword(config.Data.ProcessedDir),
				keyword(config.Intan.Funda),
				keyword(config.Intan.Company),
				keyword(config.Intan.Founding),
				keyword(config.Intan.Output),
				keyword(config.DB.URL),
				keyword(myLibrary.Name),
				keyword(isMonitored),
			)

			fmt.Println(
				lipgloss.NewStyle().
					Width(72).
					BorderStyle(lipgloss.RoundedBorder()).
					BorderForeground(lipgloss.Color("63")).
					Padding(1, 2).
					Render(sb.String()),
			)
		}

		confirmForm := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Save configuration?").
					Value(&confirmed),
			),
		)

		if err := confirmForm.Run(); err != nil {
			log.Fatal().Err(err).Msg("error confirming settings")
		}

		if !confirmed {
			log.Info().Msg("Not saving configuration")
			return
		}

		if monitored {
			viper.Set("healthchecks.apikey", config.Healthchecks.APIKey)
			name := fmt.Sprintf("prodscope intan %s", myLibrary.Name)
			checkID, err := healthcheck.Create(name, slug.Make(name), []string{"prodscope", "intan"}, "0 4 * * 0")
			if err != nil {
				log.Fatal().Err(err).Msg("creating healthcheck failed")
			}
			config.Healthchecks.PingURL = healthcheck.PingURL(checkID)
		}

		if myLibrary.DBUrl != "" {
			initLibrary(ctx, myLibrary)
		}

		// save settings to config file
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("could not determine user home directory")
		}

		configFN := filepath.Join(home, ".prodscope.toml")
		log.Info().Str("ConfigFile", configFN).Msg("Saving settings to config file")
		configData, err := toml.Marshal(config)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		err = os.WriteFile(configFN, configData, 0600)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}

		log.Info().Msg("prodscope has been initialized")
	},
}

func initLibrary(ctx context.Context, myLibrary *library.Library) {
	log.Info().Msg("creating database tables")

	if err := db.Migrate(myLibrary.DBUrl); err != nil {
		log.Fatal().Err(err).Msg("error running database migration")
	}

	log.Info().Msg("database tables created")
	log.Info().Msg("Saving library name and owner to database")

	if err := myLibrary.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("could not connect to database")
	}
	defer myLibrary.Close()

	if err := myLibrary.SaveDB(ctx); err != nil {
		log.Fatal().Err(err).Msg("error saving library settings to database")
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
}
