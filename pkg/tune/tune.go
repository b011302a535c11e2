// Package tune keeps named, range-bounded integer parameters that an external
// tuner (SPSA and friends) can read and set through UCI options.
package tune

import (
	"errors"
	"fmt"
	"io"
)

var ErrOutOfRange = errors.New("argument out of range")

type Param struct {
	Name  string
	Min   int
	Max   int
	value int
}

func (p *Param) Get() int {
	return p.value
}

func (p *Param) Set(v int) error {
	if v < p.Min || v > p.Max {
		return fmt.Errorf("%v %v: %w", p.Name, v, ErrOutOfRange)
	}
	p.value = v
	return nil
}

// Table is not synchronized. Values are set between searches and only read
// while a search is running.
type Table struct {
	params []*Param
	byName map[string]*Param
}

func NewTable() *Table {
	return &Table{
		byName: make(map[string]*Param),
	}
}

// Int registers a parameter. Registering a known name returns the existing
// parameter unchanged, so several components may share one value.
func (t *Table) Int(name string, value, min, max int) *Param {
	if p, ok := t.byName[name]; ok {
		return p
	}
	if min > max || value < min || value > max {
		panic(fmt.Errorf("tune: bad range for %v: %v not in [%v, %v]", name, value, min, max))
	}
	var p = &Param{Name: name, Min: min, Max: max, value: value}
	t.params = append(t.params, p)
	t.byName[name] = p
	return p
}

func (t *Table) Lookup(name string) (*Param, bool) {
	var p, ok = t.byName[name]
	return p, ok
}

func (t *Table) Set(name string, value int) error {
	var p, ok = t.byName[name]
	if !ok {
		return fmt.Errorf("unknown parameter %v", name)
	}
	return p.Set(value)
}

// Params returns the parameters in registration order.
func (t *Table) Params() []*Param {
	var result = make([]*Param, len(t.params))
	copy(result, t.params)
	return result
}

// WriteSPSA writes one "name, int, value, min, max, c_end, r_end" line per
// parameter, the input format of common SPSA tuners.
func (t *Table) WriteSPSA(w io.Writer) error {
	for _, p := range t.params {
		var cEnd = float64(p.Max-p.Min) / 20
		if cEnd < 0.5 {
			cEnd = 0.5
		}
		if _, err := fmt.Fprintf(w, "%v, int, %v, %v, %v, %g, %g\n",
			p.Name, p.value, p.Min, p.Max, cEnd, 0.0020); err != nil {
			return err
		}
	}
	return nil
}
