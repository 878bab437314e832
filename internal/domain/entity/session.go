package entity

// Session prueba de un login exitoso: identidad y rol al momento de emitirla.
type Session struct {
	IdentityID string
	Role       Role
}

// Valid indica si la sesión tiene identidad y un rol del conjunto cerrado.
func (s *Session) Valid() bool {
	return s != nil && s.IdentityID != "" && s.Role.IsValid()
}
