package model

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

/*
Params is a set of hyper-parameters passed to a solver
*/
type Params map[string]float64

/*
Get value of the parameter by name if exists and dflt value otherwise
*/
func (p Params) Get(name string, dflt float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return dflt
}

/*
Keys returns sorted parameter names
*/
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p Params) Copy() Params {
	r := make(Params, len(p))
	for k, v := range p {
		r[k] = v
	}
	return r
}

func (p Params) String() string {
	s := make([]string, 0, len(p))
	for _, k := range p.Keys() {
		s = append(s, k+"="+strconv.FormatFloat(p[k], 'g', -1, 64))
	}
	return strings.Join(s, ",")
}

/*
Apply sets solver config fields by parameter names,
m maps the parameter name to the pointer to the field
*/
func (p Params) Apply(m map[string]reflect.Value) error {
	for _, k := range p.Keys() {
		v := p[k]
		ref, ok := m[k]
		if !ok {
			return Trainingf(InvalidParams, "model does not have field `%v`", k)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Trainingf(InvalidParams, "field `%v` has not finite value", k)
		}
		e := ref.Elem()
		switch e.Kind() {
		case reflect.Float32, reflect.Float64:
			e.SetFloat(v)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if v != math.Trunc(v) {
				return Trainingf(InvalidParams, "field `%v` requires integer value, got %v", k, v)
			}
			e.SetInt(int64(v))
		case reflect.Bool:
			e.SetBool(v != 0)
		default:
			panic(fmt.Sprintf("unsupported field kind %v of `%v`", e.Kind(), k))
		}
	}
	return nil
}

/*
ParseParams parses name=value pairs
*/
func ParseParams(kv []string) (Params, error) {
	p := Params{}
	for _, s := range kv {
		i := strings.IndexByte(s, '=')
		if i <= 0 {
			return nil, Trainingf(InvalidParams, "parameter `%v` is not in name=value form", s)
		}
		name := strings.TrimSpace(s[:i])
		v, err := strconv.ParseFloat(strings.TrimSpace(s[i+1:]), 64)
		if err != nil {
			return nil, Trainingf(InvalidParams, "parameter `%v`: %w", name, err)
		}
		p[name] = v
	}
	return p, nil
}
