/*
 * config.go, part of rsgrad.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// config carries the defaults for the persistent flags. An rsgrad.yaml in
// the working directory overrides the built-in values; flags given on the
// command line override both.
type config struct {
	Outcar   string `yaml:"outcar"`
	Poscar   string `yaml:"poscar"`
	SaveDir  string `yaml:"saveDir"`
	LogLevel string `yaml:"logLevel"`
}

func loadConfig() config {
	c := config{
		Outcar:   "OUTCAR",
		Poscar:   "POSCAR",
		SaveDir:  ".",
		LogLevel: "info",
	}
	raw, err := os.ReadFile("rsgrad.yaml")
	if err != nil {
		return c
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		fmt.Fprintf(os.Stderr, "rsgrad.yaml ignored: %v\n", err)
	}
	return c
}
