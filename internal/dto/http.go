package dto

type BaseResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func NewBaseResponse(code int, message string, data interface{}) *BaseResponse {
	return &BaseResponse{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

type RunScanRequest struct {
	Mode  string `json:"mode" validate:"omitempty,oneof=fetch_only analyze_only full"`
	Limit int    `json:"limit" validate:"omitempty,gte=0"`
}

type BigBetsRequest struct {
	Rows   []map[string]string `json:"rows" validate:"required,min=1"`
	Amount float64             `json:"amount" validate:"omitempty,gt=0"`
}
