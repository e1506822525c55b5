/*
 * poscar.go, part of rsgrad.
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
	"os"
	"strconv"
	"strings"
)

// Poscar is a Structure as read from (or written to) a lattice-description
// file, plus the free-form comment from its first line.
type Poscar struct {
	Comment string
	Structure
}

// ReadPoscar reads and parses a POSCAR-shaped file.
func ReadPoscar(path string) (*Poscar, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := ParsePoscar(string(raw))
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.File = path
		}
		return nil, errDecorate(err, "ReadPoscar")
	}
	return p, nil
}

// ParsePoscar parses the text of a lattice-description file: comment, scale,
// three lattice vectors, species labels and counts, an optional selective
// dynamics marker, the coordinate-system selector and one line per atom,
// terminated by a blank line or the end of the input. The coordinate system
// found in the file is authoritative; the other one is computed from it.
func ParsePoscar(text string) (*Poscar, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) < 8 {
		return nil, formatErr("poscar", "file too short: %d lines", len(lines))
	}
	p := new(Poscar)
	p.Comment = strings.TrimSpace(lines[0])

	scale, err := strconv.ParseFloat(firstField(lines[1]), 64)
	if err != nil {
		return nil, parseErr("scale", "cannot parse scale from %q", lines[1])
	}
	if scale <= 0 || math.IsNaN(scale) {
		return nil, formatErr("scale", InvalidScale+": %v", scale)
	}
	p.Scale = scale

	for i := 0; i < 3; i++ {
		row, err := parseFloats(lines[2+i], 3)
		if err != nil {
			return nil, formatErr("cell", IncompleteCell+": row %d: %v", i+1, err)
		}
		p.Cell[i] = row
	}

	symbols := strings.Fields(lines[5])
	if len(symbols) == 0 {
		return nil, formatErr("species", "no species labels")
	}
	counts := strings.Fields(lines[6])
	if len(counts) != len(symbols) {
		return nil, formatErr("species", CountMismatch+": %d labels, %d counts",
			len(symbols), len(counts))
	}
	for i, c := range counts {
		n, err := strconv.Atoi(c)
		if err != nil {
			return nil, parseErr("species", "cannot parse count %q", c)
		}
		if n <= 0 {
			return nil, formatErr("species", "species %s has count %d", symbols[i], n)
		}
		p.Types = append(p.Types, Species{symbols[i], n})
	}

	cursor := 7
	seldyn := false
	if trimmed := strings.TrimSpace(lines[cursor]); len(trimmed) > 0 {
		switch trimmed[0] {
		case 's', 'S':
			seldyn = true
			cursor++
		}
	}
	if cursor >= len(lines) || len(strings.TrimSpace(lines[cursor])) == 0 {
		return nil, formatErr("coordinates", "missing coordinate-type line")
	}
	var fractional bool
	switch strings.TrimSpace(lines[cursor])[0] {
	case 'd', 'D':
		fractional = true
	case 'c', 'C', 'k', 'K':
		fractional = false
	default:
		return nil, formatErr("coordinates", UnknownCoords+": %q", lines[cursor])
	}
	cursor++

	var pos [][3]float64
	var constr [][3]bool
	for ; cursor < len(lines); cursor++ {
		line := strings.TrimSpace(lines[cursor])
		if line == "" {
			break
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, formatErr("positions", "short coordinate line %q", line)
		}
		var v [3]float64
		for j := 0; j < 3; j++ {
			v[j], err = strconv.ParseFloat(fields[j], 64)
			if err != nil {
				return nil, parseErr("positions", "cannot parse coordinate %q", fields[j])
			}
		}
		pos = append(pos, v)
		if seldyn {
			if len(fields) < 6 {
				return nil, formatErr("constraints", "missing selective-dynamics flags on line %q", line)
			}
			var c [3]bool
			for j := 0; j < 3; j++ {
				c[j], err = parseFlag(fields[3+j])
				if err != nil {
					return nil, errDecorate(err, "ParsePoscar")
				}
			}
			constr = append(constr, c)
		}
	}
	if len(pos) != p.TypesTotal() {
		return nil, consistencyErr("positions", CountMismatch+": %d atoms declared, %d coordinate lines",
			p.TypesTotal(), len(pos))
	}
	p.Constr = constr
	if fractional {
		p.Frac = pos
		p.CartFromFrac()
	} else {
		p.Cart = pos
		if err := p.FracFromCart(); err != nil {
			return nil, errDecorate(err, "ParsePoscar")
		}
	}
	return p, nil
}

func firstField(line string) string {
	f := strings.Fields(line)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

func parseFloats(line string, n int) ([3]float64, error) {
	var ret [3]float64
	fields := strings.Fields(line)
	if len(fields) < n {
		return ret, fmt.Errorf("want %d numbers, got %d", n, len(fields))
	}
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return ret, fmt.Errorf("bad number %q", fields[i])
		}
		ret[i] = v
	}
	return ret, nil
}

// parseFlag accepts the selective-dynamics tokens: anything starting with
// T/t is true, with F/f false.
func parseFlag(tok string) (bool, error) {
	switch tok[0] {
	case 'T', 't':
		return true, nil
	case 'F', 'f':
		return false, nil
	}
	return false, parseErr("constraints", "cannot parse flag %q", tok)
}

// PoscarFormat collects the formatting choices for writing a Poscar. The
// zero value is not useful; get one from NewPoscarFormat, which selects
// fractional coordinates, constraint preservation and per-atom symbol tags,
// and flip what you need.
type PoscarFormat struct {
	fractional  bool
	constraints bool
	symbolTags  bool
}

// NewPoscarFormat returns the default formatting options.
func NewPoscarFormat() *PoscarFormat {
	return &PoscarFormat{fractional: true, constraints: true, symbolTags: true}
}

// Fractional selects fractional (true) or cartesian (false) coordinates.
func (f *PoscarFormat) Fractional(b bool) *PoscarFormat {
	f.fractional = b
	return f
}

// PreserveConstraints keeps the selective-dynamics block if the structure
// has one.
func (f *PoscarFormat) PreserveConstraints(b bool) *PoscarFormat {
	f.constraints = b
	return f
}

// AddSymbolTags appends a "! Symbol-k  n" comment to every coordinate line,
// with k counting inside the species block and n globally, both 1-based.
func (f *PoscarFormat) AddSymbolTags(b bool) *PoscarFormat {
	f.symbolTags = b
	return f
}

// Format renders the Poscar as file text. Formatting never loses
// information present in the value: parse(format(p)) reproduces p up to
// float formatting precision.
func (p *Poscar) Format(f *PoscarFormat) (string, error) {
	if f == nil {
		f = NewPoscarFormat()
	}
	if err := p.check(); err != nil {
		return "", errDecorate(err, "Format")
	}
	var b strings.Builder
	comment := p.Comment
	if comment == "" {
		comment = "Generated by rsgrad"
	}
	fmt.Fprintln(&b, comment)
	fmt.Fprintf(&b, "%15.10f\n", p.Scale)
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&b, "  %20.12f  %20.12f  %20.12f\n", p.Cell[i][0], p.Cell[i][1], p.Cell[i][2])
	}
	for _, t := range p.Types {
		fmt.Fprintf(&b, " %6s", t.Symbol)
	}
	fmt.Fprintln(&b)
	for _, t := range p.Types {
		fmt.Fprintf(&b, " %6d", t.Num)
	}
	fmt.Fprintln(&b)
	withConstr := f.constraints && p.Constr != nil
	if withConstr {
		fmt.Fprintln(&b, "Selective Dynamics")
	}
	coords := p.Cart
	if f.fractional {
		fmt.Fprintln(&b, "Direct")
		coords = p.Frac
	} else {
		fmt.Fprintln(&b, "Cartesian")
	}
	symbols := p.ExpandedSymbols()
	inBlock := 0
	prev := ""
	for i, v := range coords {
		fmt.Fprintf(&b, " %18.12f %18.12f %18.12f", v[0], v[1], v[2])
		if withConstr {
			for j := 0; j < 3; j++ {
				fmt.Fprintf(&b, " %s", flagString(p.Constr[i][j]))
			}
		}
		if f.symbolTags {
			if symbols[i] != prev {
				inBlock = 0
				prev = symbols[i]
			}
			inBlock++
			fmt.Fprintf(&b, " ! %s-%d %4d", symbols[i], inBlock, i+1)
		}
		fmt.Fprintln(&b)
	}
	return b.String(), nil
}

func flagString(b bool) string {
	if b {
		return "T"
	}
	return "F"
}

// WriteFile renders the Poscar with the given options and writes it to
// path, overwriting whatever was there.
func (p *Poscar) WriteFile(path string, f *PoscarFormat) error {
	s, err := p.Format(f)
	if err != nil {
		return errDecorate(err, "WriteFile")
	}
	return os.WriteFile(path, []byte(s), 0644)
}
