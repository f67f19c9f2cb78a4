package dynamo

// DynamoDB attribute names shared by key lookups and update expressions.
const (
	fieldAdminID            = "admin_id"
	fieldCustomerID         = "customer_id"
	fieldOTPID              = "otp_id"
	fieldCurrentOTPID       = "current_otp_id"
	fieldEmail              = "email"
	fieldOwnerID            = "owner_id"
	fieldHashedRefreshToken = "hashed_refresh_token"
	fieldUpdatedAt          = "updated_at"
)
