/*
 * trajectory.go, part of rsgrad.
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
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/Ionizing/rsgrad/m33"
)

// Trajectory is the ordered sequence of structure snapshots of a
// relaxation or MD run, one per ionic iteration. All snapshots share the
// species of the aggregate they came from; each carries its own cell and
// positions.
type Trajectory []*Structure

// NewTrajectory converts the aggregate's iteration records into Structure
// snapshots, computing fractional coordinates per step. A singular step
// cell is a Geometry error.
func NewTrajectory(o *Outcar) (Trajectory, error) {
	if len(o.IonTypes) != len(o.IonsPerType) {
		return nil, consistencyErr("species", CountMismatch+": %d types, %d counts",
			len(o.IonTypes), len(o.IonsPerType))
	}
	types := make([]Species, len(o.IonTypes))
	for i := range o.IonTypes {
		types[i] = Species{o.IonTypes[i], o.IonsPerType[i]}
	}
	traj := make(Trajectory, len(o.IonIters))
	for k, it := range o.IonIters {
		s := &Structure{
			Scale:  1.0,
			Cell:   it.Cell,
			Types:  types,
			Cart:   it.Positions,
			Constr: o.Constraints,
		}
		frac, ok := m33.CartToFrac(it.Positions, it.Cell)
		if !ok {
			return nil, geometryErr(SingularCell+" (step %d)", k+1)
		}
		s.Frac = frac
		traj[k] = s
	}
	return traj, nil
}

// SaveAsXdatcar writes the whole trajectory in the multi-step fractional
// format: one cell+species header, then one coordinate block per step
// tagged with a 1-based counter.
func (t Trajectory) SaveAsXdatcar(w io.Writer) error {
	if len(t) == 0 {
		return consistencyErr("trajectory", "no steps to write")
	}
	head := t[0]
	fmt.Fprintln(w, "Generated by rsgrad")
	fmt.Fprintf(w, "%16.10f\n", head.Scale)
	for i := 0; i < 3; i++ {
		fmt.Fprintf(w, " %11.6f %11.6f %11.6f\n", head.Cell[i][0], head.Cell[i][1], head.Cell[i][2])
	}
	for _, s := range head.Types {
		fmt.Fprintf(w, " %5s", s.Symbol)
	}
	fmt.Fprintln(w)
	for _, s := range head.Types {
		fmt.Fprintf(w, " %5d", s.Num)
	}
	fmt.Fprintln(w)
	for k, s := range t {
		fmt.Fprintf(w, "Direct configuration=%6d\n", k+1)
		for _, v := range s.Frac {
			fmt.Fprintf(w, " %15.9f %15.9f %15.9f\n", v[0], v[1], v[2])
		}
	}
	return nil
}

// SaveXdatcarFile writes the trajectory to path. The compression is chosen
// by the extension: plain text by default, gzip for .gz, zstd for .zst.
func (t Trajectory) SaveXdatcarFile(path string) error {
	w, err := createOutput(path)
	if err != nil {
		return err
	}
	if err := t.SaveAsXdatcar(w); err != nil {
		w.Close()
		return errDecorate(err, "SaveXdatcarFile")
	}
	return w.Close()
}

// SaveAsPoscar writes the 1-based step index i as a single-structure file
// named POSCAR_%05d in dir, rendered with the given formatting options.
func (t Trajectory) SaveAsPoscar(i int, dir string, f *PoscarFormat) error {
	if i < 1 || i > len(t) {
		return rangeErr("step", i, len(t))
	}
	p := &Poscar{
		Comment:   fmt.Sprintf("Generated by rsgrad, step %d", i),
		Structure: *t[i-1],
	}
	err := p.WriteFile(filepath.Join(dir, fmt.Sprintf("POSCAR_%05d", i)), f)
	if err != nil {
		return errDecorate(err, "SaveAsPoscar")
	}
	return nil
}

// SaveAsPoscars writes every selected 1-based step, one file per step. The
// steps are independent, so they are written in parallel; the first error
// wins.
func (t Trajectory) SaveAsPoscars(indices []int, dir string, f *PoscarFormat) error {
	return parallelSteps(indices, func(i int) error {
		return t.SaveAsPoscar(i, dir, f)
	})
}

// parallelSteps fans the per-step export out to one goroutine per index
// and joins before returning. Each export writes its own file, so there is
// no shared mutable state between them.
func parallelSteps(indices []int, save func(int) error) error {
	errs := make([]error, len(indices))
	var wg sync.WaitGroup
	for k, i := range indices {
		wg.Add(1)
		go func(slot, step int) {
			defer wg.Done()
			errs[slot] = save(step)
		}(k, i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// SaveStepAsXsf writes the 1-based ionic step i in the force-annotated
// single-structure format: cell, then one line per atom with symbol,
// cartesian position and force.
func (o *Outcar) SaveStepAsXsf(i int, dir string) error {
	if i < 1 || i > len(o.IonIters) {
		return rangeErr("step", i, len(o.IonIters))
	}
	it := &o.IonIters[i-1]
	symbols, err := o.expandedSymbols()
	if err != nil {
		return errDecorate(err, "SaveStepAsXsf")
	}
	f, err := os.Create(filepath.Join(dir, fmt.Sprintf("step_%04d.xsf", i)))
	if err != nil {
		return err
	}
	defer f.Close()
	return writeXsf(f, it.Cell, symbols, it.Positions, it.Forces)
}

// SaveStepsAsXsfs writes every selected 1-based step in parallel.
func (o *Outcar) SaveStepsAsXsfs(indices []int, dir string) error {
	return parallelSteps(indices, func(i int) error {
		return o.SaveStepAsXsf(i, dir)
	})
}

func (o *Outcar) expandedSymbols() ([]string, error) {
	if len(o.IonTypes) != len(o.IonsPerType) {
		return nil, consistencyErr("species", CountMismatch+": %d types, %d counts",
			len(o.IonTypes), len(o.IonsPerType))
	}
	var ret []string
	for i, t := range o.IonTypes {
		for k := 0; k < o.IonsPerType[i]; k++ {
			ret = append(ret, t)
		}
	}
	return ret, nil
}

// writeXsf renders the CRYSTAL/PRIMVEC/PRIMCOORD body shared by the
// per-step and per-mode exports. The last three columns carry forces for
// ionic steps and displacements for vibrational modes.
func writeXsf(w io.Writer, cell m33.Mat, symbols []string, pos, vec [][3]float64) error {
	fmt.Fprintln(w, "CRYSTAL")
	fmt.Fprintln(w, "PRIMVEC")
	for i := 0; i < 3; i++ {
		fmt.Fprintf(w, " %15.9f %15.9f %15.9f\n", cell[i][0], cell[i][1], cell[i][2])
	}
	fmt.Fprintln(w, "PRIMCOORD")
	fmt.Fprintf(w, "%d 1\n", len(pos))
	if len(symbols) != len(pos) || len(vec) != len(pos) {
		return consistencyErr("xsf", CountMismatch+": %d symbols, %d positions, %d vectors",
			len(symbols), len(pos), len(vec))
	}
	for i := range pos {
		fmt.Fprintf(w, "%-3s %15.9f %15.9f %15.9f %15.9f %15.9f %15.9f\n",
			symbols[i], pos[i][0], pos[i][1], pos[i][2], vec[i][0], vec[i][1], vec[i][2])
	}
	return nil
}

// Vibrations is the per-mode view of an aggregate: the equilibrium
// geometry (the run's last step) plus the extracted modes.
type Vibrations struct {
	Cell      m33.Mat
	Symbols   []string
	Positions [][3]float64
	Modes     []Vibration
}

// NewVibrations builds the per-mode view. It fails when the log had no
// vibrational-analysis section.
func NewVibrations(o *Outcar) (*Vibrations, error) {
	if o.Vibs == nil {
		return nil, formatErr("vibrations", FieldNotFound)
	}
	if len(o.IonIters) == 0 {
		return nil, consistencyErr("vibrations", "no ionic steps to take the geometry from")
	}
	symbols, err := o.expandedSymbols()
	if err != nil {
		return nil, errDecorate(err, "NewVibrations")
	}
	last := &o.IonIters[len(o.IonIters)-1]
	return &Vibrations{
		Cell:      last.Cell,
		Symbols:   symbols,
		Positions: last.Positions,
		Modes:     o.Vibs,
	}, nil
}

// SaveAsXsf writes the 1-based mode index i with the displacement field in
// the force columns. The file name carries the frequency, with an _imag
// suffix for imaginary modes.
func (v *Vibrations) SaveAsXsf(i int, dir string) error {
	if i < 1 || i > len(v.Modes) {
		return rangeErr("mode", i, len(v.Modes))
	}
	mode := &v.Modes[i-1]
	suffix := ""
	if mode.Imaginary {
		suffix = "_imag"
	}
	name := fmt.Sprintf("mode_%03d_%.2fcm-1%s.xsf", i, mode.FreqCm, suffix)
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer f.Close()
	return writeXsf(f, v.Cell, v.Symbols, v.Positions, mode.DxDyDz)
}

// SaveAsXsfs writes every selected 1-based mode in parallel.
func (v *Vibrations) SaveAsXsfs(indices []int, dir string) error {
	return parallelSteps(indices, func(i int) error {
		return v.SaveAsXsf(i, dir)
	})
}

// TransformIndex turns a user-facing index selection into plain 1-based
// indices: 0 anywhere selects everything, negative values count from the
// end (-1 is the last step). Selecting against an empty sequence yields an
// empty selection.
func TransformIndex(v []int, length int) []int {
	if length <= 0 {
		return nil
	}
	for _, i := range v {
		if i == 0 {
			all := make([]int, length)
			for k := range all {
				all[k] = k + 1
			}
			return all
		}
	}
	ret := make([]int, 0, len(v))
	for _, i := range v {
		if i < 0 {
			i = (i%length+length)%length + 1
		}
		ret = append(ret, i)
	}
	return ret
}

// createOutput opens path for writing, wrapping the file in a compressor
// chosen by the extension: .gz for gzip, .zst for zstd, anything else
// plain.
func createOutput(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return &stackedWriter{gzip.NewWriter(f), f}, nil
	case ".zst":
		z, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &stackedWriter{z, f}, nil
	}
	return f, nil
}

// stackedWriter closes the compressor before the file under it.
type stackedWriter struct {
	io.WriteCloser
	f *os.File
}

func (s *stackedWriter) Close() error {
	if err := s.WriteCloser.Close(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}
