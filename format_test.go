/*
 * format_test.go, part of rsgrad.
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
	"strings"
	"testing"
)

func TestIonicIterationsFormatDefaults(t *testing.T) {
	out := NewIonicIterationsFormat(twoStepOutcar()).String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines: got %d, want header + 2 rows:\n%s", len(lines), out)
	}
	header := lines[0]
	for _, col := range []string{"#Step", "TOTEN_z/eV", "Favg", "Fmax", "#SCF", "Time/m", "Mag/muB"} {
		if !strings.Contains(header, col) {
			t.Errorf("header missing %q: %q", col, header)
		}
	}
	for _, col := range []string{"LgdE", "Vol/A3", " idx", " ax"} {
		if strings.Contains(header, col) {
			t.Errorf("header has %q despite the default toggles: %q", col, header)
		}
	}
	if !strings.Contains(lines[1], "NoMag") {
		t.Errorf("non-magnetic run should print NoMag: %q", lines[1])
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[1]), "1") ||
		!strings.HasPrefix(strings.TrimSpace(lines[2]), "2") {
		t.Errorf("step counter not 1-based:\n%s", out)
	}
}

func TestIonicIterationsFormatToggles(t *testing.T) {
	o := twoStepOutcar()
	o.IonIters[0].Magmom = []float64{2.0}
	o.IonIters[1].Magmom = []float64{2.0}
	out := NewIonicIterationsFormat(o).
		PrintEnergy(true).
		PrintVolume(true).
		PrintFmaxIndex(true).
		PrintFmaxAxis(true).
		PrintTime(false).
		String()
	header := strings.Split(out, "\n")[0]
	for _, col := range []string{"TOTEN/eV", "Vol/A3", " idx", " ax"} {
		if !strings.Contains(header, col) {
			t.Errorf("header missing %q: %q", col, header)
		}
	}
	if strings.Contains(header, "Time/m") {
		t.Errorf("time column survived being disabled: %q", header)
	}
	// 6 x 7 x 8 box.
	if !strings.Contains(out, "336.00") {
		t.Errorf("volume missing:\n%s", out)
	}
	if strings.Contains(out, "NoMag") {
		t.Errorf("magnetic run printed NoMag:\n%s", out)
	}
	// Both atoms feel |F| = sqrt(0.01+0.04); the first one wins the tie
	// and its largest component is along Y.
	row := strings.Split(out, "\n")[1]
	if !strings.Contains(row, " Y") || !strings.Contains(row, "   1") {
		t.Errorf("fmax index/axis: %q", row)
	}
}

func TestIonicIterationsFormatMaskedForces(t *testing.T) {
	o := twoStepOutcar()
	// Freeze atom 1 completely; only atom 2's force should register.
	if err := o.SetConstraints([][3]bool{{false, false, false}, {true, true, true}}); err != nil {
		t.Fatal(err)
	}
	out := NewIonicIterationsFormat(o).PrintFmaxIndex(true).String()
	row := strings.Split(out, "\n")[1]
	if !strings.Contains(row, "   2") {
		t.Errorf("frozen atom still dominates fmax: %q", row)
	}
}

func TestVibFreqsString(t *testing.T) {
	v := VibFreqs{
		{FreqCm: 3627.910256},
		{FreqCm: 0.752260, Imaginary: true},
	}
	out := v.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines: got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "f  =") || !strings.Contains(lines[0], "3627.910256") {
		t.Errorf("real mode: %q", lines[0])
	}
	if !strings.Contains(lines[1], "f/i=") || !strings.Contains(lines[1], "0.752260") {
		t.Errorf("imaginary mode: %q", lines[1])
	}
}
