// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textnorm

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Cannabis Medicinal", "cannabis medicinal"},
		{"strips accents", "Avaliação Clínica à Titulação", "avaliacao clinica a titulacao"},
		{"replaces punctuation with spaces", "dose: 0,25mg/kg (duas vezes)", "dose 0 25mg kg duas vezes"},
		{"collapses whitespace", "  muito \t espaço \n aqui  ", "muito espaco aqui"},
		{"empty string", "", ""},
		{"whitespace only", " \t\n ", ""},
		{"punctuation only", "?!...;;;", ""},
		{"keeps digits", "THC 9% CBD 20mg", "thc 9 cbd 20mg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Guia Cannabis Medicinal",
		"Protocolo IMRE — Avaliação!",
		"", "   ", "já normalizado",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "Normalize must be idempotent for %q", in)
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"protocolo", "imre", "de", "avaliacao"},
		Tokenize("Protocolo IMRE de Avaliação"))
	assert.Empty(t, Tokenize("..."))
}

func TestTruncateBytes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"under budget", "avaliação", 20, "avaliação"},
		{"exact budget", "dose", 4, "dose"},
		{"cuts ascii", "cannabis", 5, "canna"},
		// "ç" and "ã" are 2 bytes each; a cut at byte 3 lands on the
		// continuation byte of "ã" and must back up to the boundary.
		{"backs up over two-byte rune", "ção", 3, "ç"},
		{"cuts at rune boundary", "ção", 4, "çã"},
		{"backs up over accented tail", "dosagem máxima", 10, "dosagem m"},
		{"zero budget", "cbd", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateBytes(tt.in, tt.max)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestQueryTerms(t *testing.T) {
	// Terms of length <= 2 are dropped.
	assert.Equal(t, []string{"dose", "cbd"}, QueryTerms("a dose de CBD"))
	assert.Empty(t, QueryTerms("de a o"))
}
