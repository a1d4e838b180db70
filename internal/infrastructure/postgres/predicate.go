package postgres

import (
	"fmt"
	"strings"
)

// predicate es un constructor tipado de predicados SQL: acumula expresiones con
// placeholders numerados y sus argumentos, en vez de concatenar strings con
// valores en los call sites. Cubre el caso del lote opcional (lot_id = $n vs
// lot_id IS NULL) y los filtros de listado.
type predicate struct {
	exprs []string
	args  []any
}

// newPredicate arranca el builder; los args iniciales reservan placeholders
// para argumentos que la consulta usa antes del WHERE.
func newPredicate(args ...any) *predicate {
	return &predicate{args: args}
}

func (p *predicate) next() int {
	return len(p.args) + 1
}

// Eq agrega "column = $n".
func (p *predicate) Eq(column string, v any) *predicate {
	p.exprs = append(p.exprs, fmt.Sprintf("%s = $%d", column, p.next()))
	p.args = append(p.args, v)
	return p
}

// NullableEq agrega "column = $n" o "column IS NULL" si v es nil.
func (p *predicate) NullableEq(column string, v *string) *predicate {
	if v == nil {
		p.exprs = append(p.exprs, column+" IS NULL")
		return p
	}
	return p.Eq(column, *v)
}

// Gte agrega "column >= $n".
func (p *predicate) Gte(column string, v any) *predicate {
	p.exprs = append(p.exprs, fmt.Sprintf("%s >= $%d", column, p.next()))
	p.args = append(p.args, v)
	return p
}

// Lte agrega "column <= $n".
func (p *predicate) Lte(column string, v any) *predicate {
	p.exprs = append(p.exprs, fmt.Sprintf("%s <= $%d", column, p.next()))
	p.args = append(p.args, v)
	return p
}

// Raw agrega una expresión sin argumentos (p. ej. una comparación entre columnas).
func (p *predicate) Raw(expr string) *predicate {
	p.exprs = append(p.exprs, expr)
	return p
}

// Clause devuelve el cuerpo del WHERE ("a = $1 AND b IS NULL") y sus argumentos.
func (p *predicate) Clause() (string, []any) {
	return strings.Join(p.exprs, " AND "), p.args
}

// Arg registra un argumento extra (para SET u ORDER/LIMIT) y devuelve su placeholder.
func (p *predicate) Arg(v any) string {
	p.args = append(p.args, v)
	return fmt.Sprintf("$%d", len(p.args))
}
