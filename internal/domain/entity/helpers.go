package entity

import (
	"strconv"
	"time"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func itoa(n int) string { return strconv.Itoa(n) }

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// StrPtr devuelve nil para cadenas vacías.
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SameRef compara dos referencias opcionales.
func SameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// SameTime compara dos fechas opcionales.
func SameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
