/*
 * rlx.go, part of rsgrad.
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

	"github.com/spf13/cobra"

	vasp "github.com/Ionizing/rsgrad"
)

func rlxCmd() *cobra.Command {
	var (
		toten     bool
		lgde      bool
		volume    bool
		fmaxIndex bool
		fmaxAxis  bool
		noFavg    bool
		noFmax    bool
		noNSCF    bool
		noTime    bool
		noMagmom  bool
	)
	cmd := &cobra.Command{
		Use:   "rlx",
		Short: "Print the per-step relaxation summary table",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := readOutcar()
			if err != nil {
				return err
			}
			f := vasp.NewIonicIterationsFormat(o).
				PrintEnergy(toten).
				PrintLog10dE(lgde).
				PrintVolume(volume).
				PrintFmaxIndex(fmaxIndex).
				PrintFmaxAxis(fmaxAxis).
				PrintFavg(!noFavg).
				PrintFmax(!noFmax).
				PrintNSCF(!noNSCF).
				PrintTime(!noTime).
				PrintMagmom(!noMagmom)
			fmt.Print(f)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&toten, "toten", "e", false, "add the total free energy column")
	cmd.Flags().BoolVar(&lgde, "lgde", false, "add the log10 of the energy change per step")
	cmd.Flags().BoolVar(&volume, "volume", false, "add the cell volume column")
	cmd.Flags().BoolVar(&fmaxIndex, "fmax-index", false, "add the index of the atom with the largest force")
	cmd.Flags().BoolVar(&fmaxAxis, "fmax-axis", false, "add the dominant axis of the largest force")
	cmd.Flags().BoolVar(&noFavg, "no-favg", false, "drop the average force column")
	cmd.Flags().BoolVar(&noFmax, "no-fmax", false, "drop the maximum force column")
	cmd.Flags().BoolVar(&noNSCF, "no-nscf", false, "drop the electronic step count column")
	cmd.Flags().BoolVar(&noTime, "no-time", false, "drop the step wall-time column")
	cmd.Flags().BoolVar(&noMagmom, "no-magmom", false, "drop the magnetic moment column")
	return cmd
}
