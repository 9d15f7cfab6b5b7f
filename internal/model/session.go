package model

// UserType values accepted by the backend.
const (
	UserTypeBusiness = "business"
	UserTypeCustomer = "customer"
)

// Session is the identity attached to every backend request. It is
// built once at startup from config and the system keyring and passed
// explicitly into the API client, rather than re-read from storage on
// each call.
type Session struct {
	// BusinessID identifies the business whose inventory is managed.
	BusinessID string

	// UserEmail is sent as X-User-Email.
	UserEmail string

	// UserType is sent as X-User-Type.
	UserType string

	// Token is an optional bearer token for Authorization.
	Token string
}

// Valid reports whether the session carries the identity the backend
// requires on every call.
func (s Session) Valid() bool {
	return s.BusinessID != "" && s.UserEmail != ""
}
