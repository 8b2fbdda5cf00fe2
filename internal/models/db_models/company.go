package db_models

import (
	"github.com/shopspring/decimal"
)

// Company is a merchant store. Only the columns the billing side reads are
// mapped here.
type Company struct {
	BaseModel
	BusinessName    string `gorm:"not null"`
	Cnpj            string `gorm:"size:18;index"`
	Email           string
	Phone           string
	Address         string
	CashbackPercent decimal.Decimal `gorm:"type:numeric(5,2);default:0"`
	AsaasCustomerID *string         `gorm:"size:64;index"`
}
