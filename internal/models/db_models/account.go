package db_models

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// Account is a dashboard operator.
type Account struct {
	BaseModel
	Name         string
	Email        string `gorm:"unique"`
	PasswordHash string
	Role         string `gorm:"size:16;default:operator"`
}
