package dto

// CategoryRequest entrada para crear o renombrar un rubro.
type CategoryRequest struct {
	Name string `json:"name"`
}

// CategoryResponse salida de un rubro.
type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GoodRequest entrada para crear o actualizar un bien. Image viaja en base64.
type GoodRequest struct {
	Name          string  `json:"name"`
	CategoryID    *string `json:"category_id"`
	CatalogCode   string  `json:"catalog_code"`
	LineReference string  `json:"line_reference"`
	Image         []byte  `json:"image,omitempty"`
}

// GoodFilter filtros del listado de bienes.
type GoodFilter struct {
	PageRequest
	Search     string  `query:"q"`
	CategoryID *string `query:"category_id"`
}

// GoodResponse salida de un bien con su stock global.
type GoodResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	CategoryID    *string `json:"category_id"`
	CatalogCode   string  `json:"catalog_code"`
	LineReference string  `json:"line_reference"`
	HasImage      bool    `json:"has_image"`
	Available     int     `json:"available"`
}

// GoodListResponse lista paginada de bienes.
type GoodListResponse struct {
	Items []GoodResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
