/*
 * traj.go, part of rsgrad.
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
	"path/filepath"

	"github.com/spf13/cobra"

	vasp "github.com/Ionizing/rsgrad"
)

func trajCmd() *cobra.Command {
	var (
		indices   []int
		poscars   bool
		xsfs      bool
		xdatcar   string
		cartesian bool
		noConstr  bool
		noTags    bool
	)
	cmd := &cobra.Command{
		Use:   "traj",
		Short: "Export the ionic trajectory as XDATCAR, POSCARs or XSFs",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := readOutcar()
			if err != nil {
				return err
			}
			steps := vasp.TransformIndex(indices, len(o.IonIters))
			if xsfs {
				slog.Info("writing per-step xsf files", "steps", len(steps), "dir", saveDir)
				return o.SaveStepsAsXsfs(steps, saveDir)
			}
			t, err := vasp.NewTrajectory(o)
			if err != nil {
				return err
			}
			if poscars {
				f := vasp.NewPoscarFormat().
					Fractional(!cartesian).
					PreserveConstraints(!noConstr).
					AddSymbolTags(!noTags)
				slog.Info("writing per-step structure files", "steps", len(steps), "dir", saveDir)
				return t.SaveAsPoscars(steps, saveDir, f)
			}
			path := filepath.Join(saveDir, xdatcar)
			slog.Info("writing trajectory", "path", path, "steps", len(t))
			return t.SaveXdatcarFile(path)
		},
	}
	cmd.Flags().IntSliceVarP(&indices, "indices", "i", []int{0},
		"1-based steps to export; 0 selects all, negatives count from the end")
	cmd.Flags().BoolVar(&poscars, "poscar", false, "write one structure file per selected step instead of an XDATCAR")
	cmd.Flags().BoolVar(&xsfs, "xsf", false, "write one force-annotated XSF per selected step")
	cmd.Flags().StringVar(&xdatcar, "xdatcar", "XDATCAR", "trajectory file name; a .gz or .zst suffix compresses it")
	cmd.Flags().BoolVar(&cartesian, "cartesian", false, "write structure files with cartesian coordinates")
	cmd.Flags().BoolVar(&noConstr, "no-constraints", false, "drop selective-dynamics flags from structure files")
	cmd.Flags().BoolVar(&noTags, "no-symbol-tags", false, "drop per-atom symbol comments from structure files")
	return cmd
}
