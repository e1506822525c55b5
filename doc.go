/*
 * doc.go, part of rsgrad.
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

/*Package vasp extracts a verified crystal-structure and trajectory model
from the text log of an iterative atomistic-simulation run (OUTCAR) and
from the companion lattice-description file (POSCAR), and writes the model
back out in the sibling formats used by visualization and restart tooling
(POSCAR, XDATCAR, XSF).

The log has no schema, so every tracked field is located by its own pattern
search over the complete, immutable log text; the searches run concurrently
and the per-step results are checked for equal cardinality before being
zipped into iteration records. A parse either yields a fully consistent
aggregate or fails; partially populated aggregates are never returned.
*/
package vasp
