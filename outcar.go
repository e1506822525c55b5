/*
 * outcar.go, part of rsgrad.
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

//outcar.go holds the extraction engine for the simulation log. The log has
//no schema: every field is located by its own pattern search over the whole
//text, the searches run concurrently over one immutable buffer, and the
//per-step sequences are zipped positionally after a consistency check.

package vasp

import (
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/Ionizing/rsgrad/m33"
)

// IonicIteration is one relaxation/MD step. Values are filled in once
// during log extraction and not touched afterwards. Magmom is nil for
// non-magnetic runs, one value for collinear spin and three for
// non-collinear spin; do not assume a fixed length.
type IonicIteration struct {
	NSCF        int
	Toten       float64
	TotenZ      float64
	CPUTime     float64
	ExtPressure float64
	Magmom      []float64
	Positions   [][3]float64
	Forces      [][3]float64
	Cell        m33.Mat
}

// Vibration is one normal mode from a vibrational analysis. FreqCm is the
// frequency in cm-1 as reported by the log. DxDyDz is the displacement
// field with every component already divided by the square root of the
// owning atom's mass.
type Vibration struct {
	FreqCm    float64
	Imaginary bool
	DxDyDz    [][3]float64
}

// Outcar is the verified aggregate extracted from one simulation log.
// Every per-step sequence inside IonIters has been checked for equal
// length; Vibs is nil when the log has no vibrational-analysis section.
type Outcar struct {
	LSorbit     bool
	ISpin       int
	IBrion      int
	NIons       int
	NKpts       int
	NBands      int
	EFermi      float64
	Cell        m33.Mat
	IonTypes    []string
	IonsPerType []int
	IonMasses   []float64
	IonIters    []IonicIteration
	Vibs        []Vibration
	Constraints [][3]bool
}

// ReadOutcar loads the whole log file into memory and parses it.
func ReadOutcar(path string) (*Outcar, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	o, err := ParseOutcar(string(raw))
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.File = path
		}
		return nil, errDecorate(err, "ReadOutcar")
	}
	return o, nil
}

// SetConstraints merges externally obtained selective-dynamics flags (read
// from a structure file, which the log itself does not carry) into the
// aggregate, so that exported snapshots preserve them.
func (o *Outcar) SetConstraints(constr [][3]bool) error {
	if len(constr) != o.NIons {
		return consistencyErr("constraints", CountMismatch+": %d ions, %d constraint rows",
			o.NIons, len(constr))
	}
	o.Constraints = constr
	return nil
}

var (
	reISpin       = regexp.MustCompile(`ISPIN  =      (\d)`)
	reNIons       = regexp.MustCompile(`NIONS = \s+(\d+)`)
	reIBrion      = regexp.MustCompile(`IBRION = \s*(\S+) `)
	reLSorbit     = regexp.MustCompile(`LSORBIT\s*=\s*([TF])`)
	reEFermi      = regexp.MustCompile(` E-fermi : \s+([-+]?[0-9]+[.]?[0-9]*)`)
	reNKptsNBands = regexp.MustCompile(`NKPTS = \s*(\d+) .* NBANDS= \s*(\d+)`)
	reToten       = regexp.MustCompile(`free  energy   TOTEN  = \s*([-+]?[0-9]+[.]?[0-9]*([eE][-+]?[0-9]+)?) eV`)
	reTotenZ      = regexp.MustCompile(`energy  without entropy=\s+([-+]?[0-9]+[.]?[0-9]*?)  energy\(sigma->0\) =\s+([-+]?[0-9]+[.]?[0-9]*)`)
	reCPUTime     = regexp.MustCompile(`LOOP\+:  cpu time .* real time \s+([0-9]+[.]?[0-9]*)`)
	rePressure    = regexp.MustCompile(`external pressure = \s*(\S+) kB`)
	rePosition    = regexp.MustCompile(`(?m)^ POSITION`)
	reLattice     = regexp.MustCompile(`direct lattice vectors`)
	reIonsPerType = regexp.MustCompile(`(?m)ions per type = .*$`)
	rePotcar      = regexp.MustCompile(`(?m)^ POTCAR:.*$`)
	rePomass      = regexp.MustCompile(`POMASS =\s*([0-9.]+); ZVAL`)
	reNSCF        = regexp.MustCompile(`Iteration\s*\d+\(\s*(\d+)\)`)
	reMagmom      = regexp.MustCompile(`number of electron\s+\S+\s+magnetization(.*)`)
	reNDof        = regexp.MustCompile(`Degrees of freedom DOF\s*=\s*(\d+)`)
	reVibMode     = regexp.MustCompile(`(?m)^\s*(\d+) (f  |f/i)= *([0-9.]+) THz *([0-9.]+) 2PiTHz *([0-9.]+) cm-1 *([0-9.]+) meV`)
)

// ParseOutcar extracts the full aggregate from the log text. Every tracked
// field is located by an independent pattern search; the searches run as
// one fork-join batch over the shared immutable text and the per-step
// sequences are validated for equal cardinality before being zipped into
// IonicIterations. Any missing marker, unparseable token or length mismatch
// fails the whole parse: a partially populated aggregate would silently
// misalign every per-step sequence downstream.
func ParseOutcar(text string) (*Outcar, error) {
	var (
		ispin, ibrion, nions  int
		nkpts, nbands         int
		lsorbit               bool
		efermi                float64
		ionTypes              []string
		ionsPerType           []int
		massPerType           []float64
		totens, totenZs       []float64
		cputimes, pressures   []float64
		nscfs                 []int
		magmoms               [][]float64
		positions, forces     [][][3]float64
		cells                 []m33.Mat
		rawVibs               []Vibration
		vibPresent            bool
	)

	tasks := []func() error{
		func() (err error) { ispin, err = parseIntField(text, reISpin, "ISPIN"); return },
		func() (err error) { nions, err = parseIntField(text, reNIons, "NIONS"); return },
		func() (err error) { ibrion, err = parseIntField(text, reIBrion, "IBRION"); return },
		func() (err error) { lsorbit, err = parseLSorbit(text); return },
		func() (err error) { efermi, err = parseFloatField(text, reEFermi, "E-fermi"); return },
		func() (err error) { nkpts, nbands, err = parseNKptsNBands(text); return },
		func() (err error) { ionTypes, err = parseIonTypes(text); return },
		func() (err error) { ionsPerType, err = parseIonsPerType(text); return },
		func() (err error) { massPerType, err = parseMassPerType(text); return },
		func() (err error) { totens, err = parseFloatSeq(text, reToten, 1, "TOTEN"); return },
		func() (err error) { totenZs, err = parseFloatSeq(text, reTotenZ, 2, "energy(sigma->0)"); return },
		func() (err error) { cputimes, err = parseFloatSeq(text, reCPUTime, 1, "LOOP+ time"); return },
		func() (err error) { pressures, err = parseFloatSeq(text, rePressure, 1, "external pressure"); return },
		func() (err error) { nscfs, err = parseNSCFs(text); return },
		func() (err error) { magmoms, err = parseMagmoms(text); return },
		func() (err error) { positions, forces, err = parsePosForce(text); return },
		func() (err error) { cells, err = parseLattices(text); return },
		func() (err error) { rawVibs, vibPresent, err = parseRawVibrations(text); return },
	}
	errs := make([]error, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(slot int, run func() error) {
			defer wg.Done()
			errs[slot] = run()
		}(i, task)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, errDecorate(err, "ParseOutcar")
		}
	}

	if len(cells) == 0 {
		return nil, formatErr("lattice", FieldNotFound)
	}
	o := &Outcar{
		LSorbit:     lsorbit,
		ISpin:       ispin,
		IBrion:      ibrion,
		NIons:       nions,
		NKpts:       nkpts,
		NBands:      nbands,
		EFermi:      efermi,
		Cell:        cells[0],
		IonTypes:    ionTypes,
		IonsPerType: ionsPerType,
	}
	if len(massPerType) != len(ionsPerType) {
		return nil, consistencyErr("masses", CountMismatch+": %d species, %d mass entries",
			len(ionsPerType), len(massPerType))
	}
	for i, m := range massPerType {
		for k := 0; k < ionsPerType[i]; k++ {
			o.IonMasses = append(o.IonMasses, m)
		}
	}
	if len(o.IonMasses) != nions {
		return nil, consistencyErr("masses", CountMismatch+": %d ions, %d masses",
			nions, len(o.IonMasses))
	}

	// The lattice section appears once in the header and then once per
	// step, so the header occurrence is dropped when the count allows it.
	n := len(totens)
	stepCells := cells
	if len(cells) == n+1 {
		stepCells = cells[1:]
	}
	for field, l := range map[string]int{
		"energy without entropy": len(totenZs),
		"scf count":              len(nscfs),
		"cpu time":               len(cputimes),
		"external pressure":      len(pressures),
		"magmom":                 len(magmoms),
		"position/force":         len(positions),
		"lattice":                len(stepCells),
	} {
		if l != n {
			return nil, consistencyErr(field, InconsistentLen+": %d, reference (TOTEN) has %d", l, n)
		}
	}
	o.IonIters = make([]IonicIteration, n)
	for i := 0; i < n; i++ {
		o.IonIters[i] = IonicIteration{
			NSCF:        nscfs[i],
			Toten:       totens[i],
			TotenZ:      totenZs[i],
			CPUTime:     cputimes[i],
			ExtPressure: pressures[i],
			Magmom:      magmoms[i],
			Positions:   positions[i],
			Forces:      forces[i],
			Cell:        stepCells[i],
		}
	}

	if vibPresent {
		vibs, err := weightVibrations(rawVibs, o.IonMasses)
		if err != nil {
			return nil, errDecorate(err, "ParseOutcar")
		}
		o.Vibs = vibs
	}
	return o, nil
}

//Scalar extraction: one pattern search anchored on a fixed marker, fatal
//"field not found" when the marker is absent.

func parseIntField(text string, re *regexp.Regexp, field string) (int, error) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, formatErr(field, FieldNotFound)
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, parseErr(field, "cannot parse %q", m[1])
	}
	return v, nil
}

func parseFloatField(text string, re *regexp.Regexp, field string) (float64, error) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, formatErr(field, FieldNotFound)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, parseErr(field, "cannot parse %q", m[1])
	}
	return v, nil
}

func parseLSorbit(text string) (bool, error) {
	m := reLSorbit.FindStringSubmatch(text)
	if m == nil {
		return false, formatErr("LSORBIT", FieldNotFound)
	}
	return m[1] == "T", nil
}

func parseNKptsNBands(text string) (int, int, error) {
	m := reNKptsNBands.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, formatErr("NKPTS/NBANDS", FieldNotFound)
	}
	nkpts, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, parseErr("NKPTS", "cannot parse %q", m[1])
	}
	nbands, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, parseErr("NBANDS", "cannot parse %q", m[2])
	}
	return nkpts, nbands, nil
}

// parseIonTypes reads the species symbols from the POTCAR tag lines. The
// log repeats the whole tag set a second time further down, so the second
// half of the occurrences is discarded.
func parseIonTypes(text string) ([]string, error) {
	lines := rePotcar.FindAllString(text, -1)
	if len(lines) == 0 {
		return nil, formatErr("ion types", FieldNotFound)
	}
	var types []string
	for _, l := range lines {
		fields := strings.Fields(l)
		if len(fields) < 3 {
			return nil, formatErr("ion types", "short POTCAR line %q", l)
		}
		types = append(types, fields[2])
	}
	return types[:len(types)-len(types)/2], nil
}

func parseIonsPerType(text string) ([]int, error) {
	line := reIonsPerType.FindString(text)
	if line == "" {
		return nil, formatErr("ions per type", FieldNotFound)
	}
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return nil, formatErr("ions per type", "no counts on line %q", line)
	}
	var ret []int
	for _, f := range fields[4:] {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, parseErr("ions per type", "cannot parse %q", f)
		}
		ret = append(ret, n)
	}
	return ret, nil
}

// parseMassPerType reads one POMASS value per distinct species; callers
// broadcast it to a per-atom vector using the ions-per-type counts.
func parseMassPerType(text string) ([]float64, error) {
	ms := rePomass.FindAllStringSubmatch(text, -1)
	if len(ms) == 0 {
		return nil, formatErr("POMASS", FieldNotFound)
	}
	var ret []float64
	for _, m := range ms {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, parseErr("POMASS", "cannot parse %q", m[1])
		}
		ret = append(ret, v)
	}
	return ret, nil
}

//Per-step extraction: a repeating marker defines the sequence, one parsed
//value per occurrence.

func parseFloatSeq(text string, re *regexp.Regexp, group int, field string) ([]float64, error) {
	ms := re.FindAllStringSubmatch(text, -1)
	ret := make([]float64, 0, len(ms))
	for _, m := range ms {
		v, err := strconv.ParseFloat(m[group], 64)
		if err != nil {
			return nil, parseErr(field, "cannot parse %q", m[group])
		}
		ret = append(ret, v)
	}
	return ret, nil
}

// lastBefore returns the tail of text[:pos] starting at the last occurrence
// of anchor, or ok==false when the anchor never occurs before pos. It is
// the backward half of the scalar-near-marker primitive: scalars that are
// printed shortly before a repeating marker are found by anchoring on the
// marker and searching back.
func lastBefore(text string, pos int, anchor string) (string, bool) {
	i := strings.LastIndex(text[:pos], anchor)
	if i < 0 {
		return "", false
	}
	return text[i:pos], true
}

// freeEnergyMarks returns the byte offsets of the per-step energy trailers,
// which serve as the reference marker for everything extracted
// backward-from-the-trailer.
func freeEnergyMarks(text string) [][]int {
	return reToten.FindAllStringIndex(text, -1)
}

// parseNSCFs finds, for each step trailer, the innermost counter of the
// last "Iteration N( M )" banner printed before it: that M is the number of
// scf iterations the step needed.
func parseNSCFs(text string) ([]int, error) {
	marks := freeEnergyMarks(text)
	ret := make([]int, 0, len(marks))
	for _, mark := range marks {
		ctx, ok := lastBefore(text, mark[0], "Iteration")
		if !ok {
			return nil, formatErr("scf count", FieldNotFound+" before step trailer")
		}
		m := reNSCF.FindStringSubmatch(ctx)
		if m == nil {
			return nil, formatErr("scf count", "malformed Iteration banner %q", firstLine(ctx))
		}
		v, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, parseErr("scf count", "cannot parse %q", m[1])
		}
		ret = append(ret, v)
	}
	return ret, nil
}

// parseMagmoms finds the last electron-count line before each step trailer
// and takes whatever follows the magnetization keyword: nothing for
// non-magnetic runs (nil entry), one value for collinear spin, three for
// non-collinear. A log with no electron-count lines at all simply has no
// magnetic moments.
func parseMagmoms(text string) ([][]float64, error) {
	marks := freeEnergyMarks(text)
	ret := make([][]float64, 0, len(marks))
	for _, mark := range marks {
		ctx, ok := lastBefore(text, mark[0], "number of electron")
		if !ok {
			ret = append(ret, nil)
			continue
		}
		m := reMagmom.FindStringSubmatch(firstLine(ctx))
		if m == nil {
			ret = append(ret, nil)
			continue
		}
		fields := strings.Fields(m[1])
		if len(fields) == 0 {
			ret = append(ret, nil)
			continue
		}
		mag := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, parseErr("magmom", "cannot parse %q", f)
			}
			mag[i] = v
		}
		ret = append(ret, mag)
	}
	return ret, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// parsePosForce locates every POSITION/TOTAL-FORCE table and parses its
// rows: a fixed-width numeric table that starts two lines below the header
// and ends at a dashed rule. Columns 1-3 are positions, 4-6 forces.
func parsePosForce(text string) ([][][3]float64, [][][3]float64, error) {
	var poss, forss [][][3]float64
	for _, loc := range rePosition.FindAllStringIndex(text, -1) {
		pos, force, err := parsePosForceBlock(text[loc[0]:])
		if err != nil {
			return nil, nil, errDecorate(err, "parsePosForce")
		}
		poss = append(poss, pos)
		forss = append(forss, force)
	}
	return poss, forss, nil
}

func parsePosForceBlock(context string) ([][3]float64, [][3]float64, error) {
	var pos, force [][3]float64
	lines := strings.Split(context, "\n")
	for i := 2; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], " ----") {
			break
		}
		fields := strings.Fields(lines[i])
		if len(fields) < 6 {
			return nil, nil, formatErr("position/force", "short table row %q", lines[i])
		}
		var row [6]float64
		for j := 0; j < 6; j++ {
			v, err := strconv.ParseFloat(fields[j], 64)
			if err != nil {
				return nil, nil, parseErr("position/force", "cannot parse %q", fields[j])
			}
			row[j] = v
		}
		pos = append(pos, [3]float64{row[0], row[1], row[2]})
		force = append(force, [3]float64{row[3], row[4], row[5]})
	}
	return pos, force, nil
}

// parseLattices parses every lattice-vectors section, in document order.
// The first one belongs to the log header; the rest are per-step.
func parseLattices(text string) ([]m33.Mat, error) {
	var ret []m33.Mat
	for _, loc := range reLattice.FindAllStringIndex(text, -1) {
		lines := strings.Split(text[loc[0]:], "\n")
		if len(lines) < 4 {
			return nil, formatErr("lattice", "truncated lattice section")
		}
		var cell m33.Mat
		for i := 0; i < 3; i++ {
			row, err := parseFloats(lines[1+i], 3)
			if err != nil {
				return nil, formatErr("lattice", IncompleteCell+": %v", err)
			}
			cell[i] = row
		}
		ret = append(ret, cell)
	}
	return ret, nil
}

//Vibrational analysis. Only attempted when the degrees-of-freedom marker
//exists; its absence is not an error, the mode sequence is simply not
//present.

// parseRawVibrations scans for the first DOF mode headers from the start of
// the text and parses frequency, imaginary flag and the raw displacement
// table of each. The log prints the mode blocks twice (the second set
// labeled as already divided by sqrt(mass)); document-order selection takes
// the first set, and the sqrt(mass) division is applied afterwards on top
// of it.
func parseRawVibrations(text string) ([]Vibration, bool, error) {
	dm := reNDof.FindStringSubmatch(text)
	if dm == nil {
		return nil, false, nil
	}
	dof, err := strconv.Atoi(dm[1])
	if err != nil {
		return nil, false, parseErr("DOF", "cannot parse %q", dm[1])
	}
	if dof == 0 {
		return nil, false, nil
	}
	locs := reVibMode.FindAllStringSubmatchIndex(text, -1)
	if len(locs) < dof {
		return nil, false, formatErr("vibrations", "%d modes declared, %d headers found", dof, len(locs))
	}
	vibs := make([]Vibration, 0, dof)
	for _, loc := range locs[:dof] {
		imag := text[loc[4]:loc[5]] == "f/i"
		freq, err := strconv.ParseFloat(text[loc[10]:loc[11]], 64)
		if err != nil {
			return nil, false, parseErr("vibrations", "cannot parse frequency %q", text[loc[10]:loc[11]])
		}
		disp, err := parseDisplacementBlock(text[loc[1]:])
		if err != nil {
			return nil, false, errDecorate(err, "parseRawVibrations")
		}
		vibs = append(vibs, Vibration{FreqCm: freq, Imaginary: imag, DxDyDz: disp})
	}
	return vibs, true, nil
}

// parseDisplacementBlock reads the dx/dy/dz table that follows a mode
// header: one column-title line, then one row per atom until a line with
// fewer than six numeric fields.
func parseDisplacementBlock(context string) ([][3]float64, error) {
	lines := strings.Split(context, "\n")
	var disp [][3]float64
	for i := 2; i < len(lines); i++ {
		fields := strings.Fields(lines[i])
		if len(fields) < 6 {
			break
		}
		var row [6]float64
		ok := true
		for j := 0; j < 6; j++ {
			v, err := strconv.ParseFloat(fields[j], 64)
			if err != nil {
				ok = false
				break
			}
			row[j] = v
		}
		if !ok {
			break
		}
		disp = append(disp, [3]float64{row[3], row[4], row[5]})
	}
	if len(disp) == 0 {
		return nil, formatErr("vibrations", "empty displacement block")
	}
	return disp, nil
}

func weightVibrations(raw []Vibration, masses []float64) ([]Vibration, error) {
	sqrtm := make([]float64, len(masses))
	for i, m := range masses {
		sqrtm[i] = math.Sqrt(m)
	}
	ret := make([]Vibration, len(raw))
	for k, v := range raw {
		if len(v.DxDyDz) != len(masses) {
			return nil, consistencyErr("vibrations",
				InconsistentLen+": mode %d has %d displacement rows, %d ions", k+1, len(v.DxDyDz), len(masses))
		}
		disp := make([][3]float64, len(v.DxDyDz))
		for i, d := range v.DxDyDz {
			for j := 0; j < 3; j++ {
				disp[i][j] = d[j] / sqrtm[i]
			}
		}
		ret[k] = Vibration{FreqCm: v.FreqCm, Imaginary: v.Imaginary, DxDyDz: disp}
	}
	return ret, nil
}
