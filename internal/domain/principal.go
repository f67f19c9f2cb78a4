package domain

import "time"

// Principal types. Each one signs its tokens with its own pair of secrets.
const (
	PrincipalAdmin    = "admin"
	PrincipalCustomer = "customer"
)

type Admin struct {
	AdminID            string    `json:"id" dynamodbav:"admin_id"`
	FullName           string    `json:"full_name" dynamodbav:"full_name"`
	Email              string    `json:"email" dynamodbav:"email"`
	Phone              string    `json:"phone" dynamodbav:"phone"`
	HashedPassword     string    `json:"-" dynamodbav:"hashed_password"`
	HashedRefreshToken *string   `json:"-" dynamodbav:"hashed_refresh_token"`
	IsActive           bool      `json:"is_active" dynamodbav:"is_active"`
	IsCreator          bool      `json:"is_creator" dynamodbav:"is_creator"`
	CreatedAt          time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt          time.Time `json:"updated" dynamodbav:"updated_at"`
}

type Customer struct {
	CustomerID         string    `json:"id" dynamodbav:"customer_id"`
	FirstName          string    `json:"first_name" dynamodbav:"first_name"`
	LastName           string    `json:"last_name" dynamodbav:"last_name"`
	Email              string    `json:"email" dynamodbav:"email"`
	Phone              string    `json:"phone" dynamodbav:"phone"`
	HashedPassword     string    `json:"-" dynamodbav:"hashed_password"`
	HashedRefreshToken *string   `json:"-" dynamodbav:"hashed_refresh_token"`
	IsActive           bool      `json:"is_active" dynamodbav:"is_active"`
	CreatedAt          time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt          time.Time `json:"updated" dynamodbav:"updated_at"`
}

// CustomerProfile is the public view of a customer returned by token checks.
type CustomerProfile struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	IsActive  bool   `json:"is_active"`
}

func (c *Customer) Profile() CustomerProfile {
	return CustomerProfile{
		ID:        c.CustomerID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		IsActive:  c.IsActive,
	}
}

type CreateAdminRequest struct {
	FullName        string `json:"full_name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email,max=100"`
	Phone           string `json:"phone" validate:"omitempty,e164"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type CreateCustomerRequest struct {
	FirstName       string `json:"first_name" validate:"required,max=50"`
	LastName        string `json:"last_name" validate:"required,max=50"`
	Email           string `json:"email" validate:"required,email,min=3,max=100"`
	Phone           string `json:"phone" validate:"omitempty,e164"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Actor is the authenticated caller of a request, taken from token claims.
type Actor struct {
	ID        string
	Email     string
	Principal string
	IsActive  bool
	IsCreator bool
}

func (a Actor) IsAdmin() bool { return a.Principal == PrincipalAdmin }

// Owns reports whether the actor is the customer identified by customerID.
func (a Actor) Owns(customerID string) bool {
	return a.Principal == PrincipalCustomer && a.ID == customerID
}
