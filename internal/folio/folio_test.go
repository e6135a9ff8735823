package folio

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerarFormato(t *testing.T) {
	f := Generar(PrefijoRequisicion)
	hoy := time.Now().Format("060102")
	assert.Regexp(t, regexp.MustCompile(`^REQ-`+hoy+`-[A-Z0-9]{4}$`), f)
}

func TestGenerarTicketFormato(t *testing.T) {
	f := GenerarTicket()
	hoy := time.Now().Format("20060102")
	assert.Regexp(t, regexp.MustCompile(`^`+hoy+`-[A-Z0-9]{4}$`), f)
}

func TestGenerarNoEsDeterminista(t *testing.T) {
	// 4 chars over [A-Z0-9] — a handful of draws should not all collide.
	vistos := make(map[string]bool)
	for i := 0; i < 20; i++ {
		vistos[Generar(PrefijoOrdenCompra)] = true
	}
	assert.Greater(t, len(vistos), 1)
}
