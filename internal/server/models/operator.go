package models

// Operator is a door operator account. Verifier is derived from the password
// and Salt on the client; the password itself never reaches the server.
type Operator struct {
	ID       string
	Username string
	Salt     []byte
	Verifier []byte
}
