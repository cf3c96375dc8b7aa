package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica valores por defecto y límites a Limit/Offset.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// Response envoltorio de éxito: {success:true, message?, data}.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ListResponse envoltorio de éxito para listados.
type ListResponse struct {
	Success    bool `json:"success"`
	Count      int  `json:"count"`
	Total      int  `json:"total,omitempty"`
	Page       int  `json:"page,omitempty"`
	TotalPages int  `json:"totalPages,omitempty"`
	Data       any  `json:"data"`
}

// ErrorResponse cuerpo de error HTTP: {success:false, code, message}.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
