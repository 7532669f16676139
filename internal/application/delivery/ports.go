package delivery

import "github.com/jhoicas/almacen-api/internal/application/dto"

// NoteRenderer genera el PDF del remito.
type NoteRenderer interface {
	RenderDeliveryNote(d *dto.DeliveryResponse) ([]byte, error)
}

// RejectionObserver recibe el código de cada renglón rechazado (métricas).
type RejectionObserver interface {
	DeliveryLineRejected(code string)
}

type nopObserver struct{}

func (nopObserver) DeliveryLineRejected(string) {}
