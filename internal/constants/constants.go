package constants

// keys of the controller registry
const (
	Auth = iota
	Protokolle
)

// roles carried in the JWT claims
const (
	RoleAdmin     = "admin"
	RoleProtokoll = "protokoll"
	RoleMail      = "mail"
)
