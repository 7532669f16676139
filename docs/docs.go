// Package docs registra el documento OpenAPI de la API en swag y lo expone para el middleware
// de Swagger UI.
//
//	@title						Almacén API
//	@version					1.0
//	@description				Stock de almacén: órdenes de compra, remitos de entrega, contratos de servicio y reportes.
//	@BasePath					/
//	@securityDefinitions.apikey	Bearer
//	@in							header
//	@name						Authorization
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var swaggerJSON []byte

type openAPIDoc struct{}

func (openAPIDoc) ReadDoc() string { return string(swaggerJSON) }

func init() {
	swag.Register(swag.Name, openAPIDoc{})
}

// JSON devuelve el documento registrado.
func JSON() []byte {
	doc, err := swag.ReadDoc()
	if err != nil {
		return swaggerJSON
	}
	return []byte(doc)
}
