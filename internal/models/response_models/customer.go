package response_models

type Customer struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	CpfCnpj           string `json:"cpfCnpj"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Address           string `json:"address,omitempty"`
	ExternalReference string `json:"externalReference,omitempty"`
}
