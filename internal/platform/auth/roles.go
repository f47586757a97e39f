package auth

// Role values carried in session tokens.
const (
	RoleNurse   = "NURSE"
	RoleDoctor  = "DOCTOR"
	RolePatient = "PATIENT"
	RoleAdmin   = "ADMIN"
)
