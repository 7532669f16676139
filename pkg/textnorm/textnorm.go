// Package textnorm normaliza textos de catálogo (nombres, códigos, proveedores) a mayúsculas.
package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Upper recorta espacios, colapsa espacios internos y pasa a mayúsculas con reglas del español.
// cases.Caser no es seguro para uso concurrente, por eso se crea uno por llamada.
func Upper(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return cases.Upper(language.Spanish).String(s)
}

// Equal compara dos textos después de normalizarlos.
func Equal(a, b string) bool {
	return Upper(a) == Upper(b)
}
