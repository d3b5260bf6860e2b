/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally
within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Messaging Business Logic Errors
const (
	// ErrReceiverRequired indicates that a send request did not name a receiver.
	ErrReceiverRequired = 2101

	// ErrMessageContentEmpty indicates that a send request carried no content.
	ErrMessageContentEmpty = 2102

	// ErrMessageContentTooLong indicates that the message content exceeded the maximum length limit.
	ErrMessageContentTooLong = 2103

	// ErrReceiverNotFound indicates that the named receiver does not exist.
	ErrReceiverNotFound = 2104
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrUnauthorized indicates a missing, invalid, or expired credential on a protected route.
	ErrUnauthorized = 3001

	// ErrInvalidCredentials indicates that the supplied email/password pair did not match.
	ErrInvalidCredentials = 3002

	// ErrInvalidGoogleToken indicates that the supplied Google ID token failed verification.
	ErrInvalidGoogleToken = 3003

	// ErrInvalidEmail indicates that the supplied email address is malformed.
	ErrInvalidEmail = 3004

	// ErrInvalidPassword indicates that the supplied password does not satisfy the length rules.
	ErrInvalidPassword = 3005

	// ErrNameRequired indicates that a registration request did not include a display name.
	ErrNameRequired = 3006

	// ErrUserAlreadyExists indicates that the email is already taken by another account.
	ErrUserAlreadyExists = 3007

	// ErrUserNotFound indicates that the referenced user account does not exist.
	ErrUserNotFound = 3101
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrPersistence indicates that a durable-store operation failed.
	ErrPersistence = 5001

	// ErrAIProviderFailed indicates that the upstream AI provider call failed.
	ErrAIProviderFailed = 5002

	// ErrStorageUnavailable indicates that avatar storage is not configured on this deployment.
	ErrStorageUnavailable = 5003

	// ErrStorageFailed indicates that the storage service could not complete the request.
	ErrStorageFailed = 5004
)
