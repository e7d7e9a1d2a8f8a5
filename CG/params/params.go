// Package params holds the CG problem classes.
package params

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// RCOND is the condition-number decay ratio used by every class.
const RCOND = 0.1

// ErrUnknownClass is returned by Lookup for letters outside S W A B C D E.
var ErrUnknownClass = errors.New("params: unknown problem class")

// Class is one row of the CG class table.
type Class struct {
	CLASS             string
	NA                int
	NONZER            int
	NITER             int
	SHIFT             float64
	RCOND             float64
	ZETA_VERIFY_VALUE float64
}

// NZ is the capacity reserved for matrix elements, NA*(NONZER+1)^2.
func (c Class) NZ() int {
	return c.NA * (c.NONZER + 1) * (c.NONZER + 1)
}

var classes = map[string]Class{
	"S": {CLASS: "S", NA: 1400, NONZER: 7, NITER: 15, SHIFT: 10.0, RCOND: RCOND, ZETA_VERIFY_VALUE: 8.5971775078648},
	"W": {CLASS: "W", NA: 7000, NONZER: 8, NITER: 15, SHIFT: 12.0, RCOND: RCOND, ZETA_VERIFY_VALUE: 10.362595087124},
	"A": {CLASS: "A", NA: 14000, NONZER: 11, NITER: 15, SHIFT: 20.0, RCOND: RCOND, ZETA_VERIFY_VALUE: 17.130235054029},
	"B": {CLASS: "B", NA: 75000, NONZER: 13, NITER: 75, SHIFT: 60.0, RCOND: RCOND, ZETA_VERIFY_VALUE: 22.712745482631},
	"C": {CLASS: "C", NA: 150000, NONZER: 15, NITER: 75, SHIFT: 110.0, RCOND: RCOND, ZETA_VERIFY_VALUE: 28.973605592845},
	"D": {CLASS: "D", NA: 1500000, NONZER: 21, NITER: 100, SHIFT: 500.0, RCOND: RCOND, ZETA_VERIFY_VALUE: 52.514532105794},
	"E": {CLASS: "E", NA: 9000000, NONZER: 26, NITER: 100, SHIFT: 1500.0, RCOND: RCOND, ZETA_VERIFY_VALUE: 77.522164599383},
}

// Lookup returns the class for a letter, case-insensitively.
func Lookup(letter string) (Class, error) {
	c, ok := classes[strings.ToUpper(strings.TrimSpace(letter))]
	if !ok {
		return Class{}, errors.Wrapf(ErrUnknownClass, "%q (valid classes are %s)", letter, strings.Join(Letters(), ", "))
	}
	return c, nil
}

// Letters lists the known class letters in table order.
func Letters() []string {
	order := map[string]int{"S": 0, "W": 1, "A": 2, "B": 3, "C": 4, "D": 5, "E": 6}
	out := make([]string, 0, len(classes))
	for k := range classes {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i]] < order[out[j]] })
	return out
}
