package entity

// Roles válidos para User.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User usuario del API. ADMIN puede modificar inventario; USER solo consultar.
type User struct {
	Username     string
	PasswordHash string // bcrypt
	Role         string
}
