/*
 * vib.go, part of rsgrad.
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
	"log/slog"

	"github.com/spf13/cobra"

	vasp "github.com/Ionizing/rsgrad"
)

func vibCmd() *cobra.Command {
	var (
		indices []int
		save    bool
	)
	cmd := &cobra.Command{
		Use:   "vib",
		Short: "List vibrational modes or export them as XSF",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := readOutcar()
			if err != nil {
				return err
			}
			v, err := vasp.NewVibrations(o)
			if err != nil {
				return err
			}
			if !save {
				fmt.Print(vasp.VibFreqs(v.Modes))
				return nil
			}
			modes := vasp.TransformIndex(indices, len(v.Modes))
			slog.Info("writing mode xsf files", "modes", len(modes), "dir", saveDir)
			return v.SaveAsXsfs(modes, saveDir)
		},
	}
	cmd.Flags().IntSliceVarP(&indices, "indices", "i", []int{0},
		"1-based modes to export; 0 selects all, negatives count from the end")
	cmd.Flags().BoolVar(&save, "save-xsf", false, "write the selected modes as displacement-annotated XSF files")
	return cmd
}
