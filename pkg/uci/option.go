package uci

import (
	"fmt"
	"strconv"

	"github.com/ChizhovVadim/CounterTM/pkg/tune"
)

type Option interface {
	UciName() string
	UciString() string
	Set(s string) error
}

type BoolOption struct {
	Name  string
	Value *bool
}

func (opt *BoolOption) UciName() string {
	return opt.Name
}

func (opt *BoolOption) UciString() string {
	return fmt.Sprintf("option name %v type %v default %v",
		opt.Name, "check", *opt.Value)
}

func (opt *BoolOption) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("option %v: %w", opt.Name, err)
	}
	*opt.Value = v
	return nil
}

type IntOption struct {
	Name  string
	Min   int
	Max   int
	Value *int
}

func (opt *IntOption) UciName() string {
	return opt.Name
}

func (opt *IntOption) UciString() string {
	return fmt.Sprintf("option name %v type %v default %v min %v max %v",
		opt.Name, "spin", *opt.Value, opt.Min, opt.Max)
}

func (opt *IntOption) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("option %v: %w", opt.Name, err)
	}
	if v < opt.Min || v > opt.Max {
		return fmt.Errorf("option %v %v: %w", opt.Name, v, tune.ErrOutOfRange)
	}
	*opt.Value = v
	return nil
}

// TuneOption exposes a tuning parameter as a spin option.
type TuneOption struct {
	Param *tune.Param
}

func (opt *TuneOption) UciName() string {
	return opt.Param.Name
}

func (opt *TuneOption) UciString() string {
	return fmt.Sprintf("option name %v type %v default %v min %v max %v",
		opt.Param.Name, "spin", opt.Param.Get(), opt.Param.Min, opt.Param.Max)
}

func (opt *TuneOption) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("option %v: %w", opt.Param.Name, err)
	}
	return opt.Param.Set(v)
}

// TuneOptions returns one option per parameter of the table.
func TuneOptions(t *tune.Table) []Option {
	var result []Option
	for _, p := range t.Params() {
		result = append(result, &TuneOption{Param: p})
	}
	return result
}
