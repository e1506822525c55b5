/*
 * pos.go, part of rsgrad.
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

func posCmd() *cobra.Command {
	var (
		out       string
		sortKey   string
		split     []int
		cartesian bool
		noConstr  bool
		noTags    bool
	)
	cmd := &cobra.Command{
		Use:   "pos",
		Short: "Convert, sort or split a structure file",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := vasp.ReadPoscar(poscarPath)
			if err != nil {
				return err
			}
			f := vasp.NewPoscarFormat().
				Fractional(!cartesian).
				PreserveConstraints(!noConstr).
				AddSymbolTags(!noTags)
			if sortKey != "" {
				if err := p.SortByAxes(sortKey); err != nil {
					return err
				}
			}
			if len(split) > 0 {
				sel := vasp.TransformIndex(split, p.Natoms())
				for i := range sel {
					sel[i]--
				}
				a, b, err := p.Split(sel)
				if err != nil {
					return err
				}
				pa := &vasp.Poscar{Comment: p.Comment + " (selected)", Structure: *a}
				pb := &vasp.Poscar{Comment: p.Comment + " (rest)", Structure: *b}
				slog.Info("splitting structure", "selected", a.Natoms(), "rest", b.Natoms())
				if err := pa.WriteFile(filepath.Join(saveDir, out+"_A"), f); err != nil {
					return err
				}
				return pb.WriteFile(filepath.Join(saveDir, out+"_B"), f)
			}
			return p.WriteFile(filepath.Join(saveDir, out), f)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "POSCAR_new", "output file name")
	cmd.Flags().StringVar(&sortKey, "sort", "", `sort atoms inside each species block by an axis key such as "ab" or "XY"`)
	cmd.Flags().IntSliceVar(&split, "split", nil,
		"1-based atoms going to the first half; 0 selects all, negatives count from the end")
	cmd.Flags().BoolVar(&cartesian, "cartesian", false, "write cartesian coordinates")
	cmd.Flags().BoolVar(&noConstr, "no-constraints", false, "drop selective-dynamics flags")
	cmd.Flags().BoolVar(&noTags, "no-symbol-tags", false, "drop per-atom symbol comments")
	return cmd
}
