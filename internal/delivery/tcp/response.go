package tcp

// Fixed response texts. They are part of the wire contract and must not change.
const (
	UnknownCommand           = "Unknown command."
	InvalidArguments         = "Invalid arguments"
	SuccessfulOperation      = "Transaction completed"
	MustLogin                = "Log in first or create an account to perform this action."
	AlreadyLoggedIn          = "You are already logged in."
	NegativeAmount           = "Amount cannot be negative."
	InvalidAmountArgument    = "Amount of money is invalid."
	InsufficientAmount       = "You do not have enough on balance."
	AssetDoesNotExist        = "No such asset is available for purchasing."
	AssetNotPurchased        = "No such asset was purchased."
	AccountDoesNotExist      = "No such account exists."
	InvalidPassword          = "Incorrect password. Please try again."
	RegisteredSuccessfully   = "Registered successfully."
	LoggedSuccessfully       = "Logged in successfully."
	AccountExists            = "Such account already exists"
	DisconnectedSuccessfully = "Disconnected successfully."
	ShutdownMessage          = "Server was shutdown."
	ProblemOccurred          = "A problem occurred while reading input. Try again."
)

// EncodeResponse renders a handler result as wire bytes.
// An empty result means the handler failed to produce one.
func EncodeResponse(response string) []byte {
	if response == "" {
		response = ProblemOccurred
	}
	return []byte(response)
}

// ClosesConnection reports whether writing response ends the client's connection
func ClosesConnection(response string) bool {
	return response == DisconnectedSuccessfully || response == ShutdownMessage
}
