package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Reposicion-api/internal/application/dto"
)

func TestDefaultPage_NormalizaLaPagina(t *testing.T) {
	cases := []struct {
		name     string
		in, want dto.PageRequest
	}{
		{"vacía usa los defaults", dto.PageRequest{}, dto.PageRequest{Limit: 20}},
		{"límite excesivo se recorta a 100", dto.PageRequest{Limit: 500, Offset: 10}, dto.PageRequest{Limit: 100, Offset: 10}},
		{"offset negativo vuelve a cero", dto.PageRequest{Limit: 5, Offset: -3}, dto.PageRequest{Limit: 5}},
		{"una página válida no se toca", dto.PageRequest{Limit: 50, Offset: 40}, dto.PageRequest{Limit: 50, Offset: 40}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.in.DefaultPage()
			assert.Equal(t, tc.want, tc.in)
		})
	}
}
