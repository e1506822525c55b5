/*
 * main.go, part of rsgrad.
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
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	vasp "github.com/Ionizing/rsgrad"
	"github.com/Ionizing/rsgrad/internal/logging"
)

var (
	outcarPath string
	poscarPath string
	saveDir    string
	logLevel   string
)

func main() {
	cfg := loadConfig()

	rootCmd := &cobra.Command{
		Use:   "rsgrad",
		Short: "Relaxation tables, trajectories and vibrations from simulation logs",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(logging.ParseLevel(logLevel))
		},
	}

	rootCmd.PersistentFlags().StringVar(&outcarPath, "outcar", cfg.Outcar, "path to the simulation log")
	rootCmd.PersistentFlags().StringVar(&poscarPath, "poscar", cfg.Poscar, "path to the companion structure file")
	rootCmd.PersistentFlags().StringVarP(&saveDir, "save-dir", "d", cfg.SaveDir, "directory generated files go to")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	rootCmd.AddCommand(rlxCmd())
	rootCmd.AddCommand(trajCmd())
	rootCmd.AddCommand(vibCmd())
	rootCmd.AddCommand(posCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// readOutcar loads the log and, when the companion structure file carries
// selective-dynamics flags, merges them into the aggregate so force
// statistics and exported snapshots honor them. A missing or unreadable
// structure file is not an error here.
func readOutcar() (*vasp.Outcar, error) {
	o, err := vasp.ReadOutcar(outcarPath)
	if err != nil {
		return nil, err
	}
	p, err := vasp.ReadPoscar(poscarPath)
	if err != nil {
		slog.Debug("no constraints merged", "poscar", poscarPath, "err", err)
		return o, nil
	}
	if p.Constr != nil {
		if err := o.SetConstraints(p.Constr); err != nil {
			slog.Warn("constraints ignored", "err", err)
		}
	}
	return o, nil
}
