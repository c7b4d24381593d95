package domain

// User is the single resource managed by the service.
// ID is assigned by the store on creation and never changes afterwards.
type User struct {
	ID   string
	Name string
}
