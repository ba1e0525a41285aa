/*
Package catalog lists the available solvers
*/
package catalog

import (
	"go-ml.dev/pkg/ordinal/model"
	"go-ml.dev/pkg/ordinal/model/nnpom"
	"go-ml.dev/pkg/ordinal/model/svorex"
)

/*
Table returns constructors of all known solvers
*/
func Table() model.Table {
	return model.Table{
		svorex.Name: func() model.Solver { return svorex.New() },
		nnpom.Name:  func() model.Solver { return nnpom.New() },
	}
}

/*
New creates solver by name
*/
func New(name string) (model.Solver, error) {
	return Table().New(name)
}
