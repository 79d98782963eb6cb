package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Unavailable      Code = 100008
	TooManyRequests  Code = 100009
	Transient        Code = 100010

	// Ledger codes
	InsufficientFunds Code = 200001
	InvalidAmount     Code = 200002
	Overflow          Code = 200003

	// Voucher codes
	AlreadyActivated Code = 300001
	Exhausted        Code = 300002
	GateFailed       Code = 300003

	// Lifecycle codes
	StateConflict Code = 400001
)
