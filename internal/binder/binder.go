// Package binder replays a resolved hook table into a runtime registrar.
package binder

import (
	"errors"

	"github.com/apex/log"

	"github.com/tender-barbarian/hooklens/internal/hooktab"
)

// ErrNotDefined is returned by a Registrar when an obfuscated name does not
// exist in the live runtime.
var ErrNotDefined = errors.New("not defined in runtime")

// Registrar registers host classes and enums under their logical names.
type Registrar interface {
	RegisterClass(obfuscated, logical string) error
	RegisterEnum(obfuscated, logical string) error
}

// Binding is the outcome of replaying one hook.
type Binding struct {
	Logical    string `json:"logical"`
	Obfuscated string `json:"obfuscated"`
	Err        error  `json:"-"`
}

// Report lists the bindings that succeeded and failed, in table order.
type Report struct {
	Bound  []Binding `json:"bound"`
	Failed []Binding `json:"failed"`
}

// BindClasses registers every class hook of m with reg.
func BindClasses(m *hooktab.Map, reg Registrar, l log.Interface) Report {
	return bind(m, reg.RegisterClass, "class", l)
}

// BindEnums registers every enum hook of m with reg.
func BindEnums(m *hooktab.Map, reg Registrar, l log.Interface) Report {
	return bind(m, reg.RegisterEnum, "enum", l)
}

// bind is a pure replay: entries are neither skipped nor reordered, and a
// failing entry does not stop the ones after it.
func bind(m *hooktab.Map, register func(obfuscated, logical string) error, kind string, l log.Interface) Report {
	if l == nil {
		l = log.Log
	}
	var r Report
	for _, e := range m.Entries() {
		b := Binding{Logical: e.Logical(), Obfuscated: e.Obfuscated()}
		ctx := l.WithFields(log.Fields{"kind": kind, "logical": b.Logical, "obfuscated": b.Obfuscated})
		if err := register(b.Obfuscated, b.Logical); err != nil {
			b.Err = err
			ctx.WithError(err).Error("unable to bind hook")
			r.Failed = append(r.Failed, b)
			continue
		}
		ctx.Debug("bound hook")
		r.Bound = append(r.Bound, b)
	}
	return r
}
