/*
 * format.go, part of rsgrad.
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

package vasp

import (
	"fmt"
	"math"
	"strings"
)

// IonicIterationsFormat renders the iteration records as a progress table,
// one row per step. Column selection uses non-consuming boolean setters so
// callers can chain only the toggles they care about; the defaults show
// energy without entropy, maximum and average force, scf count, time and
// magnetic moment.
type IonicIterationsFormat struct {
	iters  []IonicIteration
	constr [][3]bool

	energy    bool
	energyZ   bool
	log10dE   bool
	favg      bool
	fmax      bool
	fmaxAxis  bool
	fmaxIndex bool
	nscf      bool
	time      bool
	magmom    bool
	volume    bool
}

// NewIonicIterationsFormat builds a formatter over the aggregate's steps
// with the default column set. Constraints present on the aggregate mask
// frozen force components out of the force statistics.
func NewIonicIterationsFormat(o *Outcar) *IonicIterationsFormat {
	return &IonicIterationsFormat{
		iters:   o.IonIters,
		constr:  o.Constraints,
		energyZ: true,
		favg:    true,
		fmax:    true,
		nscf:    true,
		time:    true,
		magmom:  true,
	}
}

func (f *IonicIterationsFormat) PrintEnergy(b bool) *IonicIterationsFormat    { f.energy = b; return f }
func (f *IonicIterationsFormat) PrintEnergyZ(b bool) *IonicIterationsFormat   { f.energyZ = b; return f }
func (f *IonicIterationsFormat) PrintLog10dE(b bool) *IonicIterationsFormat   { f.log10dE = b; return f }
func (f *IonicIterationsFormat) PrintFavg(b bool) *IonicIterationsFormat      { f.favg = b; return f }
func (f *IonicIterationsFormat) PrintFmax(b bool) *IonicIterationsFormat      { f.fmax = b; return f }
func (f *IonicIterationsFormat) PrintFmaxAxis(b bool) *IonicIterationsFormat  { f.fmaxAxis = b; return f }
func (f *IonicIterationsFormat) PrintFmaxIndex(b bool) *IonicIterationsFormat { f.fmaxIndex = b; return f }
func (f *IonicIterationsFormat) PrintNSCF(b bool) *IonicIterationsFormat      { f.nscf = b; return f }
func (f *IonicIterationsFormat) PrintTime(b bool) *IonicIterationsFormat      { f.time = b; return f }
func (f *IonicIterationsFormat) PrintMagmom(b bool) *IonicIterationsFormat    { f.magmom = b; return f }
func (f *IonicIterationsFormat) PrintVolume(b bool) *IonicIterationsFormat    { f.volume = b; return f }

// maskedForce returns the force on atom i with frozen components zeroed,
// so frozen atoms don't dominate the convergence statistics.
func (f *IonicIterationsFormat) maskedForce(it *IonicIteration, i int) [3]float64 {
	force := it.Forces[i]
	if f.constr != nil && i < len(f.constr) {
		for j := 0; j < 3; j++ {
			if !f.constr[i][j] {
				force[j] = 0
			}
		}
	}
	return force
}

var axisNames = [3]string{"X", "Y", "Z"}

func (f *IonicIterationsFormat) String() string {
	var b strings.Builder

	b.WriteString("  #Step")
	if f.energy {
		b.WriteString("     TOTEN/eV")
	}
	if f.energyZ {
		b.WriteString("  TOTEN_z/eV")
	}
	if f.log10dE {
		b.WriteString(" LgdE")
	}
	if f.favg {
		b.WriteString("   Favg")
	}
	if f.fmax {
		b.WriteString("   Fmax")
	}
	if f.fmaxIndex {
		b.WriteString(" idx")
	}
	if f.fmaxAxis {
		b.WriteString("  ax")
	}
	if f.nscf {
		b.WriteString(" #SCF")
	}
	if f.time {
		b.WriteString(" Time/m")
	}
	if f.volume {
		b.WriteString("   Vol/A3")
	}
	if f.magmom {
		b.WriteString("  Mag/muB")
	}
	b.WriteString("\n")

	prevZ := 0.0
	for k := range f.iters {
		it := &f.iters[k]
		fmt.Fprintf(&b, "%7d", k+1)
		if f.energy {
			fmt.Fprintf(&b, " %12.5f", it.Toten)
		}
		if f.energyZ {
			fmt.Fprintf(&b, " %11.5f", it.TotenZ)
		}
		if f.log10dE {
			de := it.TotenZ - prevZ
			fmt.Fprintf(&b, " %4.1f", math.Log10(math.Abs(de)))
		}
		prevZ = it.TotenZ

		fmaxVal := 0.0
		fmaxIdx := 0
		fsum := 0.0
		for i := range it.Forces {
			force := f.maskedForce(it, i)
			size := math.Sqrt(force[0]*force[0] + force[1]*force[1] + force[2]*force[2])
			fsum += size
			if size > fmaxVal {
				fmaxVal = size
				fmaxIdx = i
			}
		}
		if f.favg {
			fmt.Fprintf(&b, " %6.3f", fsum/float64(len(it.Forces)))
		}
		if f.fmax {
			fmt.Fprintf(&b, " %6.3f", fmaxVal)
		}
		if f.fmaxIndex {
			fmt.Fprintf(&b, " %3d", fmaxIdx+1)
		}
		if f.fmaxAxis {
			force := f.maskedForce(it, fmaxIdx)
			ax := 0
			for j := 1; j < 3; j++ {
				if math.Abs(force[j]) > math.Abs(force[ax]) {
					ax = j
				}
			}
			fmt.Fprintf(&b, "   %s", axisNames[ax])
		}
		if f.nscf {
			fmt.Fprintf(&b, " %4d", it.NSCF)
		}
		if f.time {
			fmt.Fprintf(&b, " %6.2f", it.CPUTime/60.0)
		}
		if f.volume {
			fmt.Fprintf(&b, " %8.2f", it.Cell.Volume())
		}
		if f.magmom {
			if it.Magmom != nil {
				for _, m := range it.Magmom {
					fmt.Fprintf(&b, " %7.3f", m)
				}
			} else {
				b.WriteString("   NoMag")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// VibFreqs lists the extracted vibrational modes in brief, one per line,
// flagging imaginary ones the way the log does.
type VibFreqs []Vibration

func (v VibFreqs) String() string {
	var b strings.Builder
	for i, mode := range v {
		marker := "f  "
		if mode.Imaginary {
			marker = "f/i"
		}
		fmt.Fprintf(&b, "%4d %s= %14.6f cm-1\n", i+1, marker, mode.FreqCm)
	}
	return b.String()
}
