package request_models

type CreateCustomerRequest struct {
	Name              string `json:"name" binding:"required"`
	CpfCnpj           string `json:"cpfCnpj" binding:"required"`
	Email             string `json:"email" binding:"omitempty,email"`
	Phone             string `json:"phone"`
	Address           string `json:"address"`
	ExternalReference string `json:"externalReference" binding:"required"`
}
